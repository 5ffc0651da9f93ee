package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"walletscan/internal/balance"
	"walletscan/internal/mnemonic"
	"walletscan/internal/notify"
	"walletscan/internal/ops/encdec"
	"walletscan/internal/scanner"
	"walletscan/internal/sink"
	"walletscan/internal/stats"
	"walletscan/pkg/appcfg"
	"walletscan/pkg/chaincfg"
	"walletscan/pkg/i18n"
	"walletscan/pkg/logx"
)

type Runner struct {
	in    *bufio.Reader
	app   *appcfg.Config
	msg   i18n.Messages
	st    *stats.Stats
	gen   *mnemonic.Generator
	der   *mnemonic.Deriver
	check scanner.Checker
	notif scanner.Notifier
	tg    *notify.Telegram // nil when telegram is not configured
}

// NewRunner resolves every capability once at startup: vocabulary, HD
// derivation, holdings access key, reachable chains. A missing vocabulary is
// fatal; everything else degrades with a logged warning.
func NewRunner(ctx context.Context, app *appcfg.Config, chains *chaincfg.Config) (*Runner, error) {
	st := stats.New()

	gen, err := mnemonic.NewGenerator(st)
	if err != nil {
		return nil, fmt.Errorf("credential generator: %w", err)
	}

	var holdings balance.HoldingsSource
	if key := chains.HoldingsAccessKey(); key != "" && chains.Holdings.BaseURL != "" {
		holdings = balance.NewHoldingsClient(chains.Holdings.BaseURL, key, chains.HoldingsTimeout())
		logx.S().Infow("holdings API enabled", "base_url", chains.Holdings.BaseURL)
	} else {
		logx.S().Warnw("holdings API disabled: no access key configured")
	}

	rpcs := balance.DialChains(ctx, chains)
	if holdings == nil && len(rpcs) == 0 {
		logx.S().Warnw("no balance sources reachable: every check will come back empty")
	}

	r := &Runner{
		in:    bufio.NewReader(os.Stdin),
		app:   app,
		msg:   i18n.Get(app.Language),
		st:    st,
		gen:   gen,
		der:   mnemonic.NewDeriver(chains.UseHD()),
		check: balance.NewAggregator(holdings, rpcs, chains.HoldingsTimeout(), chains.ChainTimeout()),
		notif: notify.Nop{},
	}
	if tg, ok := notify.NewTelegramFromEnv(); ok {
		r.tg = tg
		r.notif = tg
		logx.S().Infow("telegram notifications enabled")
	}
	return r, nil
}

// Close releases the notifier queue.
func (r *Runner) Close() {
	if r.tg != nil {
		r.tg.Close()
	}
}

func (r *Runner) prompt() string {
	text, _ := r.in.ReadString('\n')
	return strings.TrimSpace(text)
}

func (r *Runner) promptPassword() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return r.prompt()
}

func (r *Runner) Run() {
	for {
		m := r.msg
		fmt.Println()
		fmt.Println(m.MenuTitle)
		fmt.Println(m.MenuQuickScan)
		fmt.Println(m.MenuMediumScan)
		fmt.Println(m.MenuLargeScan)
		fmt.Println(m.MenuMegaScan)
		fmt.Println(m.MenuCustomScan)
		fmt.Println(m.MenuStats)
		fmt.Println(m.MenuExport)
		fmt.Println(m.MenuDecrypt)
		fmt.Println(m.MenuExit)
		fmt.Print("> ")
		choice := strings.ToLower(r.prompt())
		switch choice {
		case "1":
			r.handleScan(10)
		case "2":
			r.handleScan(100)
		case "3":
			r.handleScan(1000)
		case "4":
			r.handleScan(10000)
		case "5":
			r.handleCustomScan()
		case "6":
			r.printStats()
		case "7":
			r.handleExport()
		case "8":
			r.handleDecrypt()
		case "0", "":
			fmt.Println(m.ExitText)
			return
		default:
			fmt.Println(m.UnknownCommand, choice)
		}
	}
}

func (r *Runner) handleCustomScan() {
	fmt.Print(r.msg.CustomPrompt)
	n := atoiSafe(r.prompt())
	if n < 1 {
		fmt.Println(r.msg.InvalidNumber)
		return
	}
	r.handleScan(n)
}

func (r *Runner) handleScan(count int) {
	if count >= 10000 {
		fmt.Print(r.msg.ConfirmBigScan)
		if strings.ToLower(r.prompt()) != "yes" {
			fmt.Println(r.msg.Cancelled)
			return
		}
	}

	store, err := sink.Open(r.app.ResultsBase)
	if err != nil {
		logx.S().Errorw("open result store failed", "err", err)
		return
	}
	defer store.Close()

	// per-run app.log next to the stores
	if err := logx.Init(logx.Config{
		Level:                r.app.LogLevel,
		FilePath:             filepath.Join(store.Dir(), "app.log"),
		HideSecretsInConsole: r.app.HideSecretsInConsole,
	}); err != nil {
		logx.S().Errorw("logx init for scan failed", "err", err)
		return
	}

	ctx, cancel := withInterrupt(context.Background())
	defer cancel()

	snap, err := scanner.Run(ctx, scanner.Deps{
		Gen:     r.gen,
		Deriver: r.der,
		Checker: r.check,
		Sink:    store,
		Stats:   r.st,
		Notify:  r.notif,
	}, scanner.Options{Count: count, Workers: r.app.Workers})
	if err != nil {
		logx.S().Errorw("scan failed", "err", err)
	}
	_ = snap // final counters already logged by the engine
}

func (r *Runner) printStats() {
	snap := r.st.Snapshot()
	fmt.Printf("generated : %d\n", snap.Generated)
	fmt.Printf("checked   : %d\n", snap.Checked)
	fmt.Printf("found     : %d\n", snap.Found)
	fmt.Printf("empty     : %d\n", snap.Empty)
	fmt.Printf("errors    : %d\n", snap.Errors)
	fmt.Printf("rate      : %.2f wallet/s\n", snap.Rate())
	fmt.Printf("elapsed   : %s\n", snap.Elapsed.Round(time.Millisecond))
	if snap.LastFound != "" {
		fmt.Printf("last found: %s\n", snap.LastFound)
	}
}

func (r *Runner) handleExport() {
	fmt.Print(r.msg.FoundFilePrompt)
	foundFile := r.prompt()
	fmt.Print(r.msg.PasswordPrompt)
	pwd := r.promptPassword()
	if pwd == "" {
		fmt.Println(r.msg.EmptyPassword)
		return
	}
	fmt.Print(r.msg.HintPrompt)
	hint := r.prompt()

	ctx, cancel := withInterrupt(context.Background())
	defer cancel()
	if err := encdec.ExportKeystores(ctx, encdec.ExportOptions{
		FoundFile:            foundFile,
		OutBase:              r.app.ResultsBase,
		Password:             pwd,
		PassHint:             hint,
		HideSecretsInConsole: r.app.HideSecretsInConsole,
	}); err != nil {
		logx.S().Errorw("keystore export failed", "err", err)
	}
}

func (r *Runner) handleDecrypt() {
	fmt.Print(r.msg.InputsDirPrompt)
	inputs := r.prompt()
	fmt.Print(r.msg.PasswordPrompt)
	pwd := r.promptPassword()
	if pwd == "" {
		fmt.Println(r.msg.EmptyPassword)
		return
	}

	ctx, cancel := withInterrupt(context.Background())
	defer cancel()
	if err := encdec.DecryptKeystores(ctx, encdec.DecryptOptions{
		InputsDir:            inputs,
		OutBase:              r.app.ResultsBase,
		Password:             pwd,
		HideSecretsInConsole: r.app.HideSecretsInConsole,
	}); err != nil {
		logx.S().Errorw("decrypt failed", "err", err)
	}
}

func atoiSafe(s string) int {
	var n int
	_, _ = fmt.Sscan(s, &n)
	return n
}

func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
