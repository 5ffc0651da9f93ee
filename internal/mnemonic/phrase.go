package mnemonic

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	bip39 "github.com/tyler-smith/go-bip39"

	"walletscan/internal/stats"
)

const (
	// VocabularySize is the size of the BIP-39 English wordlist.
	VocabularySize = 2048
	// WordsPerPhrase is the number of words drawn per candidate phrase.
	WordsPerPhrase = 12
)

// ErrVocabularyUnavailable is returned when the wordlist cannot be loaded.
// It is fatal at startup: no vocabulary means no candidates.
var ErrVocabularyUnavailable = errors.New("bip39 vocabulary unavailable")

// Generator produces candidate seed phrases by drawing words uniformly at
// random from the vocabulary. The resulting phrases do not satisfy the BIP-39
// checksum in the general case; the scanner deliberately searches the full
// unconstrained word-space, the way the tool always has.
//
// Not safe for concurrent use: the scan loop is the single producer.
type Generator struct {
	words []string
	rnd   *rand.Rand
	st    *stats.Stats
}

// NewGenerator loads the BIP-39 English wordlist and seeds the draw from the
// current time.
func NewGenerator(st *stats.Stats) (*Generator, error) {
	words := bip39.GetWordList()
	if len(words) != VocabularySize {
		return nil, ErrVocabularyUnavailable
	}
	return newGenerator(words, rand.New(rand.NewSource(time.Now().UnixNano())), st)
}

// NewSeededGenerator builds a generator over an explicit vocabulary with a
// fixed seed, for reproducible draws.
func NewSeededGenerator(words []string, seed int64, st *stats.Stats) (*Generator, error) {
	return newGenerator(words, rand.New(rand.NewSource(seed)), st)
}

func newGenerator(words []string, rnd *rand.Rand, st *stats.Stats) (*Generator, error) {
	if len(words) == 0 {
		return nil, ErrVocabularyUnavailable
	}
	return &Generator{words: words, rnd: rnd, st: st}, nil
}

// Generate draws WordsPerPhrase words independently and uniformly and joins
// them with spaces. Increments the generated counter.
func (g *Generator) Generate() string {
	var b strings.Builder
	for i := 0; i < WordsPerPhrase; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(g.words[g.rnd.Intn(len(g.words))])
	}
	if g.st != nil {
		g.st.IncGenerated()
	}
	return b.String()
}
