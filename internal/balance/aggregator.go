package balance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"walletscan/pkg/logx"
)

// Result is the merged view of every balance source for one address. Built
// once per candidate and immutable afterwards.
type Result struct {
	Address    string
	Coins      map[string]decimal.Decimal
	BalanceUSD decimal.Decimal
	Chains     []string // chains whose native balance is strictly positive, sorted
	Nonce      uint64   // max nonce observed across chains
	HasValue   bool
}

// Aggregator fans out the token-holdings query and per-chain RPC queries for
// an address and merges whatever came back. Every sub-call carries its own
// timeout; a timed-out, malformed or rate-limited source degrades to absent
// data and never fails the sibling calls or the candidate.
type Aggregator struct {
	holdings        HoldingsSource // nil when no access key is configured
	chains          []ChainSource
	holdingsTimeout time.Duration
	chainTimeout    time.Duration
}

func NewAggregator(holdings HoldingsSource, chains []ChainSource, holdingsTimeout, chainTimeout time.Duration) *Aggregator {
	if holdingsTimeout <= 0 {
		holdingsTimeout = DefaultHoldingsTimeout
	}
	if chainTimeout <= 0 {
		chainTimeout = DefaultChainTimeout
	}
	return &Aggregator{
		holdings:        holdings,
		chains:          chains,
		holdingsTimeout: holdingsTimeout,
		chainTimeout:    chainTimeout,
	}
}

type chainSample struct {
	id     string
	symbol string
	native decimal.Decimal
	nonce  uint64
}

// Check queries all sources for the address concurrently and merges:
// per-symbol amounts accumulate additively across the holdings source and
// every chain's native balance; BalanceUSD comes solely from the holdings
// source (native balances are not priced); Nonce is the maximum seen.
func (a *Aggregator) Check(ctx context.Context, address string) *Result {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		holdings *HoldingsSample
		samples  []chainSample
	)

	if a.holdings != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, a.holdingsTimeout)
			defer cancel()
			sample, err := a.holdings.Fetch(callCtx, address)
			if err != nil {
				logx.S().Debugw("holdings query degraded", "address", address, "err", err)
				return
			}
			mu.Lock()
			holdings = sample
			mu.Unlock()
		}()
	}

	for _, ch := range a.chains {
		wg.Add(1)
		go func(ch ChainSource) {
			defer wg.Done()
			s := chainSample{id: ch.ID(), symbol: ch.NativeSymbol()}

			natCtx, cancel := context.WithTimeout(ctx, a.chainTimeout)
			native, err := ch.Native(natCtx, address)
			cancel()
			if err != nil {
				logx.S().Debugw("native balance degraded", "chain", s.id, "address", address, "err", err)
			} else {
				s.native = native
			}

			nonceCtx, cancel := context.WithTimeout(ctx, a.chainTimeout)
			nonce, err := ch.Nonce(nonceCtx, address)
			cancel()
			if err != nil {
				logx.S().Debugw("nonce query degraded", "chain", s.id, "address", address, "err", err)
			} else {
				s.nonce = nonce
			}

			mu.Lock()
			samples = append(samples, s)
			mu.Unlock()
		}(ch)
	}

	wg.Wait()
	return merge(address, holdings, samples)
}

func merge(address string, holdings *HoldingsSample, samples []chainSample) *Result {
	res := &Result{
		Address:    address,
		Coins:      make(map[string]decimal.Decimal),
		BalanceUSD: decimal.Zero,
	}

	if holdings != nil {
		for sym, amt := range holdings.Coins {
			res.Coins[sym] = res.Coins[sym].Add(amt)
		}
		res.BalanceUSD = holdings.TotalUSD
	}

	for _, s := range samples {
		if s.native.IsPositive() {
			res.Coins[s.symbol] = res.Coins[s.symbol].Add(s.native)
			res.Chains = append(res.Chains, s.id)
		}
		if s.nonce > res.Nonce {
			res.Nonce = s.nonce
		}
	}
	sort.Strings(res.Chains)

	res.HasValue = res.BalanceUSD.IsPositive() || len(res.Chains) > 0 || res.Nonce > 0
	return res
}
