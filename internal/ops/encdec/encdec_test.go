package encdec

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletscan/internal/crypto"
	"walletscan/internal/sink"
)

func findSingle(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestExportThenDecryptRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt key derivation is expensive")
	}

	priv, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	privHex := crypto.PrivToHex(priv)
	addr := crypto.AddressHex(priv)

	base := t.TempDir()
	foundPath := filepath.Join(base, "found.jsonl")
	line, err := json.Marshal(sink.FoundRecord{Address: addr, PrivateKey: privHex, Phrase: "x y z"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(foundPath, append(line, '\n'), 0o600))

	err = ExportKeystores(context.Background(), ExportOptions{
		FoundFile: foundPath,
		OutBase:   base,
		Password:  "hunter2",
		PassHint:  "the usual",
	})
	require.NoError(t, err)

	exportDir := findSingle(t, filepath.Join(base, "export", "*", "export_*"))

	blob, err := os.ReadFile(findSingle(t, filepath.Join(exportDir, "files", "*.json")))
	require.NoError(t, err)
	assert.Contains(t, string(blob), "crypto")

	hint, err := os.ReadFile(filepath.Join(exportDir, "hint.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(hint), "the usual")

	err = DecryptKeystores(context.Background(), DecryptOptions{
		InputsDir: exportDir,
		OutBase:   base,
		Password:  "hunter2",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(findSingle(t, filepath.Join(base, "decrypt", "*", "decrypt_*", "all.txt")))
	require.NoError(t, err)

	// all.jsonl and files/<address>.json both hold the key, so two lines come back
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, addr+":"+privHex, l)
	}
}

func TestDecryptWrongPasswordWritesNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt key derivation is expensive")
	}

	priv, err := gethcrypto.GenerateKey()
	require.NoError(t, err)

	base := t.TempDir()
	inputs := filepath.Join(base, "keystores")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	blob, err := crypto.KeystoreJSON(priv, "right")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "wallet.json"), blob, 0o600))

	err = DecryptKeystores(context.Background(), DecryptOptions{
		InputsDir: inputs,
		OutBase:   base,
		Password:  "wrong",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(findSingle(t, filepath.Join(base, "decrypt", "*", "decrypt_*", "all.txt")))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}

func TestCollectInputFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all.jsonl"), []byte("{}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "b.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))

	files := collectInputFiles(dir)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "all.jsonl"), files[0])
}
