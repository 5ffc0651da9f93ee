package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"walletscan/internal/balance"
	"walletscan/internal/crypto"
	"walletscan/internal/mnemonic"
	"walletscan/internal/sink"
	"walletscan/internal/stats"
	"walletscan/pkg/logx"
)

// DefaultWorkers bounds the number of in-flight balance checks.
const DefaultWorkers = 16

// Checker runs the full multi-source balance check for one address.
type Checker interface {
	Check(ctx context.Context, address string) *balance.Result
}

// ResultSink receives classified records. Appends come from the single writer
// goroutine; an append error is a data-loss risk and terminates the batch.
type ResultSink interface {
	AppendFound(sink.FoundRecord) error
	AppendEmpty(sink.EmptyRecord) error
}

// Notifier is the outbound event port. The engine only ever enqueues;
// implementations must not block and delivery failures never affect the scan.
type Notifier interface {
	ScanStarted(count, workers int)
	WalletFound(rec sink.FoundRecord)
	EmptyBatch(empty, checked uint64)
	ScanCompleted(snap stats.Snapshot)
}

// Options configures one finite batch.
type Options struct {
	Count   int
	Workers int

	ProgressEvery     time.Duration // progress log cadence, default 10s
	EmptySummaryEvery time.Duration // empty-batch notification cadence, default 60s
}

// Deps are the collaborators of one batch run, injected rather than global.
type Deps struct {
	Gen     *mnemonic.Generator
	Deriver *mnemonic.Deriver
	Checker Checker
	Sink    ResultSink
	Stats   *stats.Stats
	Notify  Notifier // optional
}

type outcome struct {
	res     *balance.Result
	privHex string
	phrase  string
}

// Run drives a finite batch: generate → derive → submit a bounded check →
// classify and persist in completion order. Failed derivations are dropped
// (still counted as generated). Cancelling ctx stops submission; in-flight
// checks run on to their own timeouts and are still persisted.
func Run(ctx context.Context, deps Deps, opt Options) (stats.Snapshot, error) {
	if opt.Count < 1 {
		return stats.Snapshot{}, fmt.Errorf("batch count must be >= 1, got %d", opt.Count)
	}
	workers := opt.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	progressEvery := opt.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 10 * time.Second
	}
	emptyEvery := opt.EmptySummaryEvery
	if emptyEvery <= 0 {
		emptyEvery = time.Minute
	}

	st := deps.Stats
	st.Reset()

	app := logx.S()
	app.Infow("scan started", "count", opt.Count, "workers", workers)
	if deps.Notify != nil {
		deps.Notify.ScanStarted(opt.Count, workers)
	}

	events := make(chan outcome, workers*4)

	// In-flight checks outlive a cancelled run; their sub-calls carry their
	// own timeouts, so this cannot block forever.
	checkCtx := context.WithoutCancel(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var persistErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		lastEmptyNotify := time.Now()
		for ev := range events {
			if ev.res.HasValue {
				rec := sink.FoundRecord{
					Address:    ev.res.Address,
					PrivateKey: ev.privHex,
					Phrase:     ev.phrase,
					BalanceUSD: ev.res.BalanceUSD,
					Coins:      ev.res.Coins,
					Chains:     ev.res.Chains,
					Nonce:      ev.res.Nonce,
					FoundAt:    time.Now(),
				}
				if err := deps.Sink.AppendFound(rec); err != nil {
					if persistErr == nil {
						persistErr = err
						cancel()
					}
					app.Errorw("found append failed", "address", rec.Address, "err", err)
					continue
				}
				st.IncFound(rec.Address)
				app.Infow("FOUND",
					"address", rec.Address,
					"balance_usd", rec.BalanceUSD.String(),
					"chains", rec.Chains,
					"nonce", rec.Nonce,
					"phrase", rec.Phrase,
					"private_key", rec.PrivateKey,
				)
				if deps.Notify != nil {
					deps.Notify.WalletFound(rec)
				}
			} else {
				rec := sink.EmptyRecord{
					Address:   ev.res.Address,
					Phrase:    ev.phrase,
					CheckedAt: time.Now(),
				}
				if err := deps.Sink.AppendEmpty(rec); err != nil {
					if persistErr == nil {
						persistErr = err
						cancel()
					}
					app.Errorw("empty append failed", "address", rec.Address, "err", err)
					continue
				}
				st.IncEmpty()
			}

			if deps.Notify != nil && time.Since(lastEmptyNotify) >= emptyEvery {
				if snap := st.Snapshot(); snap.Empty > 0 {
					deps.Notify.EmptyBatch(snap.Empty, snap.Checked)
				}
				lastEmptyNotify = time.Now()
			}
		}
	}()

	submitted := make(chan struct{})
	statusDone := make(chan struct{})
	go func() {
		defer close(statusDone)
		ticker := time.NewTicker(progressEvery)
		defer ticker.Stop()
		for {
			select {
			case <-submitted:
				return
			case <-ticker.C:
				snap := st.Snapshot()
				app.Infow("progress",
					"generated", snap.Generated,
					"checked", snap.Checked,
					"found", snap.Found,
					"empty", snap.Empty,
					"errors", snap.Errors,
					"rate_wallet_per_sec", fmt.Sprintf("%.2f", snap.Rate()),
					"elapsed", humanDuration(snap.Elapsed),
				)
			}
		}
	}()

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

submission:
	for i := 0; i < opt.Count; i++ {
		select {
		case <-runCtx.Done():
			break submission
		default:
		}

		phrase := deps.Gen.Generate()
		acct, err := deps.Deriver.Derive(phrase, 0)
		if err != nil {
			st.IncErrors()
			app.Debugw("derivation failed, candidate dropped", "err", err)
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			break submission
		}

		wg.Add(1)
		go func(acct *mnemonic.DerivedAccount) {
			defer wg.Done()
			defer func() { <-sem }()
			res := deps.Checker.Check(checkCtx, acct.Address)
			st.IncChecked()
			events <- outcome{res: res, privHex: crypto.PrivToHex(acct.Priv), phrase: acct.Phrase}
		}(acct)
	}

	wg.Wait()
	close(events)
	close(submitted)
	<-writerDone
	<-statusDone

	snap := st.Snapshot()
	app.Infow("scan completed",
		"generated", snap.Generated,
		"checked", snap.Checked,
		"found", snap.Found,
		"empty", snap.Empty,
		"errors", snap.Errors,
		"elapsed", humanDuration(snap.Elapsed),
	)
	if deps.Notify != nil {
		deps.Notify.ScanCompleted(snap)
	}

	if persistErr != nil {
		return snap, fmt.Errorf("batch aborted on persistence failure: %w", persistErr)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return snap, err
	}
	return snap, nil
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
}
