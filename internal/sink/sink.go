// Package sink persists scan outcomes to append-only JSONL stores.
//
// A Store owns one run directory holding found.jsonl and empty.jsonl. Appends
// are serialized by a mutex and each record is written with a single write
// call, so the stores stay a well-formed collection of complete records under
// concurrent writers. The scan engine additionally funnels every append
// through one writer goroutine; the mutex covers any other caller.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	FoundFile = "found.jsonl"
	EmptyFile = "empty.jsonl"
)

// FoundRecord is appended for every wallet classified FOUND.
type FoundRecord struct {
	Address    string                     `json:"address"`
	PrivateKey string                     `json:"private_key"`
	Phrase     string                     `json:"phrase"`
	BalanceUSD decimal.Decimal            `json:"balance_usd"`
	Coins      map[string]decimal.Decimal `json:"coins"`
	Chains     []string                   `json:"chains"`
	Nonce      uint64                     `json:"nonce"`
	FoundAt    time.Time                  `json:"found_at"`
}

// EmptyRecord is the lighter record appended for EMPTY wallets.
type EmptyRecord struct {
	Address   string    `json:"address"`
	Phrase    string    `json:"phrase"`
	CheckedAt time.Time `json:"checked_at"`
}

type Store struct {
	dir string

	mu    sync.Mutex
	found *os.File
	empty *os.File
}

// Open creates a fresh run directory under base
// (base/scan/<DD.MM.YYYY>/scan_<HH-MM-SS>/) and opens both stores for append.
func Open(base string) (*Store, error) {
	now := time.Now()
	dir := filepath.Join(base, "scan", now.Format("02.01.2006"), "scan_"+now.Format("15-04-05"))
	return OpenDir(dir)
}

// OpenDir opens (creating if needed) the stores inside an explicit directory.
func OpenDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", dir, err)
	}
	found, err := OpenAppend(filepath.Join(dir, FoundFile))
	if err != nil {
		return nil, fmt.Errorf("open found store: %w", err)
	}
	empty, err := OpenAppend(filepath.Join(dir, EmptyFile))
	if err != nil {
		found.Close()
		return nil, fmt.Errorf("open empty store: %w", err)
	}
	return &Store{dir: dir, found: found, empty: empty}, nil
}

// OpenAppend opens a file for exclusive-append writes.
func OpenAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// Dir returns the run directory of this store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) AppendFound(rec FoundRecord) error {
	return s.append(s.found, rec)
}

func (s *Store) AppendEmpty(rec EmptyRecord) error {
	return s.append(s.empty, rec)
}

func (s *Store) append(f *os.File, rec any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line := append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(f.Name()), err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ferr := s.found.Close()
	eerr := s.empty.Close()
	if ferr != nil {
		return ferr
	}
	return eerr
}
