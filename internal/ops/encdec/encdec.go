// Package encdec provides the keystore export/decrypt operations over scan
// result stores: found records become password-protected keystore V3 files,
// and keystores can be turned back into raw keys.
package encdec

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gethks "github.com/ethereum/go-ethereum/accounts/keystore"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	wscrypto "walletscan/internal/crypto"
	"walletscan/internal/sink"
	"walletscan/pkg/logx"
)

// ExportOptions controls the found-store → keystore export job.
type ExportOptions struct {
	FoundFile            string // path to a found.jsonl store
	OutBase              string // e.g. "results"
	Password             string // required
	PassHint             string // optional text stored near the output
	HideSecretsInConsole bool
}

// DecryptOptions controls the keystore → raw key job.
type DecryptOptions struct {
	InputsDir            string // dir holding all.jsonl and/or *.json keystores
	OutBase              string // e.g. "results"
	Password             string // required
	HideSecretsInConsole bool
}

// ExportKeystores encrypts the private key of every found record with a
// single password. Results:
//
//	results/export/<DD.MM.YYYY>/export_<HH-MM-SS>/all.jsonl (one keystore JSON per line)
//	results/export/.../files/<address>.json (one file per wallet)
func ExportKeystores(ctx context.Context, opt ExportOptions) error {
	dir, err := sink.MakeOpsDir(opt.OutBase, "export")
	if err != nil {
		return err
	}
	_ = sink.WriteHint(dir, opt.PassHint)
	app := logx.S()

	f, err := os.Open(opt.FoundFile)
	if err != nil {
		return fmt.Errorf("open found store: %w", err)
	}
	defer f.Close()

	filesDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return fmt.Errorf("mkdir files: %w", err)
	}
	allPath := filepath.Join(dir, "all.jsonl")
	allF, err := sink.OpenAppend(allPath)
	if err != nil {
		return fmt.Errorf("open all.jsonl: %w", err)
	}
	defer allF.Close()

	app.Infow("keystore export started", "found", opt.FoundFile, "out", dir)

	var total, okCnt, failCnt int
	start := time.Now()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		total++

		var rec sink.FoundRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			failCnt++
			app.Errorw("parse found record failed", "err", err)
			continue
		}

		priv, err := gethcrypto.HexToECDSA(strings.TrimPrefix(rec.PrivateKey, "0x"))
		if err != nil {
			failCnt++
			app.Errorw("parse private key failed", "address", rec.Address, "err", err)
			continue
		}

		addr := gethcrypto.PubkeyToAddress(priv.PublicKey)
		blob, err := wscrypto.KeystoreJSON(priv, opt.Password)
		if err != nil {
			failCnt++
			app.Errorw("keystore encrypt failed", "address", addr.Hex(), "err", err)
			continue
		}

		if _, err := allF.Write(append(blob, '\n')); err != nil {
			failCnt++
			app.Errorw("append all.jsonl failed", "address", addr.Hex(), "err", err)
			continue
		}
		perWallet := filepath.Join(filesDir, strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))+".json")
		if err := os.WriteFile(perWallet, blob, 0o600); err != nil {
			failCnt++
			app.Errorw("write single keystore failed", "address", addr.Hex(), "err", err)
			continue
		}

		okCnt++
		if opt.HideSecretsInConsole {
			app.Infow("EXPORTED", "address", addr.Hex())
		} else {
			app.Infow("EXPORTED", "address", addr.Hex(), "private_key", rec.PrivateKey)
		}
	}
	if err := sc.Err(); err != nil {
		app.Errorw("scan found store failed", "err", err)
	}

	app.Infow("keystore export finished", "total", total, "ok", okCnt, "failed", failCnt, "elapsed", time.Since(start).String())
	return nil
}

// DecryptKeystores reads <InputsDir>/{all.jsonl, *.json, files/*.json} and
// writes raw keys into results/decrypt/.../all.txt as "address:private" lines.
func DecryptKeystores(ctx context.Context, opt DecryptOptions) error {
	dir, err := sink.MakeOpsDir(opt.OutBase, "decrypt")
	if err != nil {
		return err
	}
	app := logx.S()

	outAll := filepath.Join(dir, "all.txt")
	outF, err := os.Create(outAll)
	if err != nil {
		return fmt.Errorf("create all.txt: %w", err)
	}
	defer outF.Close()

	files := collectInputFiles(opt.InputsDir)
	if len(files) == 0 {
		app.Warnw("no keystore files found", "dir", opt.InputsDir)
		return nil
	}

	app.Infow("decrypt started", "inputs", opt.InputsDir, "out", dir, "files", len(files))

	writeLine := func(addr, privHex string) error {
		_, err := fmt.Fprintf(outF, "%s:%s\n", addr, privHex)
		return err
	}
	logOne := func(addr, privHex string) {
		if opt.HideSecretsInConsole {
			app.Infow("DECRYPTED", "address", addr)
		} else {
			app.Infow("DECRYPTED", "address", addr, "private_key", privHex)
		}
	}

	var total, okCnt, failCnt int
	start := time.Now()

	for _, p := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if strings.HasSuffix(p, ".jsonl") {
			f, err := os.Open(p)
			if err != nil {
				app.Errorw("open jsonl failed", "file", p, "err", err)
				continue
			}
			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				total++
				addr, privHex, derr := decryptOne([]byte(line), opt.Password)
				if derr != nil {
					failCnt++
					app.Errorw("decrypt failed", "file", p, "err", derr)
					continue
				}
				okCnt++
				_ = writeLine(addr, privHex)
				logOne(addr, privHex)
			}
			_ = f.Close()
			if err := sc.Err(); err != nil {
				app.Errorw("scan jsonl failed", "file", p, "err", err)
			}
			continue
		}

		blob, err := os.ReadFile(p)
		if err != nil {
			app.Errorw("read json failed", "file", p, "err", err)
			continue
		}
		total++
		addr, privHex, derr := decryptOne(blob, opt.Password)
		if derr != nil {
			failCnt++
			app.Errorw("decrypt failed", "file", p, "err", derr)
			continue
		}
		okCnt++
		_ = writeLine(addr, privHex)
		logOne(addr, privHex)
	}

	app.Infow("decrypt finished", "total", total, "ok", okCnt, "failed", failCnt, "elapsed", time.Since(start).String())
	return nil
}

func collectInputFiles(inDir string) []string {
	var files []string
	allJSONL := filepath.Join(inDir, "all.jsonl")
	if st, err := os.Stat(allJSONL); err == nil && !st.IsDir() {
		files = append(files, allJSONL)
	}
	entries, _ := os.ReadDir(inDir)
	for _, de := range entries {
		if de.IsDir() {
			if de.Name() == "files" {
				sub := filepath.Join(inDir, "files")
				subEntries, _ := os.ReadDir(sub)
				for _, se := range subEntries {
					if !se.IsDir() && strings.HasSuffix(se.Name(), ".json") {
						files = append(files, filepath.Join(sub, se.Name()))
					}
				}
			}
			continue
		}
		if strings.HasSuffix(de.Name(), ".json") {
			files = append(files, filepath.Join(inDir, de.Name()))
		}
	}
	return files
}

func decryptOne(blob []byte, password string) (addr string, privHex string, err error) {
	blob = []byte(strings.TrimSpace(string(blob)))
	// Validate JSON ahead of DecryptKey to return a clearer error on garbage input.
	var js map[string]any
	if err := json.Unmarshal(blob, &js); err != nil {
		return "", "", fmt.Errorf("invalid keystore json: %w", err)
	}

	key, err := gethks.DecryptKey(blob, password)
	if err != nil {
		return "", "", err
	}
	addr = key.Address.Hex()
	privHex = "0x" + fmt.Sprintf("%x", gethcrypto.FromECDSA(key.PrivateKey))
	return addr, privHex, nil
}
