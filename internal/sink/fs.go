package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MakeOpsDir creates base/<module>/<DD.MM.YYYY>/<module>_<HH-MM-SS> for
// one-off operations (keystore export, decrypt).
func MakeOpsDir(base, module string) (string, error) {
	now := time.Now()
	dir := filepath.Join(base, module, now.Format("02.01.2006"), module+"_"+now.Format("15-04-05"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return dir, nil
}

// WriteHint stores an operator-provided password hint next to the output.
func WriteHint(dir, hint string) error {
	if hint == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, "hint.txt"), []byte(hint), 0o600)
}
