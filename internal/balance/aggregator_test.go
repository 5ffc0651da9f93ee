package balance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHoldings struct {
	sample *HoldingsSample
	err    error
	delay  time.Duration
}

func (s *stubHoldings) Fetch(ctx context.Context, _ string) (*HoldingsSample, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.sample, s.err
}

type stubChain struct {
	id        string
	symbol    string
	native    decimal.Decimal
	nativeErr error
	nonce     uint64
	nonceErr  error
}

func (s *stubChain) ID() string           { return s.id }
func (s *stubChain) NativeSymbol() string { return s.symbol }

func (s *stubChain) Native(context.Context, string) (decimal.Decimal, error) {
	return s.native, s.nativeErr
}

func (s *stubChain) Nonce(context.Context, string) (uint64, error) {
	return s.nonce, s.nonceErr
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheckMergesNativeIntoHoldingsAdditively(t *testing.T) {
	holdings := &stubHoldings{sample: &HoldingsSample{
		Coins:    map[string]decimal.Decimal{"ETH": dec("1.0")},
		TotalUSD: dec("2000"),
	}}
	chain := &stubChain{id: "ethereum", symbol: "ETH", native: dec("0.5")}

	a := NewAggregator(holdings, []ChainSource{chain}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	require.True(t, res.Coins["ETH"].Equal(dec("1.5")), "ETH = %s", res.Coins["ETH"])
	assert.True(t, res.BalanceUSD.Equal(dec("2000")), "native balances are not priced")
	assert.Equal(t, []string{"ethereum"}, res.Chains)
	assert.True(t, res.HasValue)
}

func TestCheckAllSourcesEmpty(t *testing.T) {
	holdings := &stubHoldings{sample: &HoldingsSample{
		Coins:    map[string]decimal.Decimal{},
		TotalUSD: decimal.Zero,
	}}
	chain := &stubChain{id: "ethereum", symbol: "ETH"}

	a := NewAggregator(holdings, []ChainSource{chain}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.False(t, res.HasValue)
	assert.Empty(t, res.Chains)
	assert.Zero(t, res.Nonce)
	assert.True(t, res.BalanceUSD.IsZero())
}

func TestCheckNonceAloneMarksValue(t *testing.T) {
	chain := &stubChain{id: "ethereum", symbol: "ETH", nonce: 3}

	a := NewAggregator(nil, []ChainSource{chain}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.True(t, res.HasValue)
	assert.Equal(t, uint64(3), res.Nonce)
	assert.Empty(t, res.Chains, "zero native balance keeps the chain out of the set")
}

func TestCheckSurvivesHoldingsFailure(t *testing.T) {
	holdings := &stubHoldings{err: errors.New("boom")}
	chain := &stubChain{id: "ethereum", symbol: "ETH", nonce: 5}

	a := NewAggregator(holdings, []ChainSource{chain}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.True(t, res.HasValue, "chain data alone classifies FOUND")
	assert.True(t, res.BalanceUSD.IsZero())
	assert.Equal(t, uint64(5), res.Nonce)
}

func TestCheckHoldingsTimeoutDegrades(t *testing.T) {
	holdings := &stubHoldings{
		delay:  time.Second,
		sample: &HoldingsSample{Coins: map[string]decimal.Decimal{"ETH": dec("9")}, TotalUSD: dec("9999")},
	}
	chain := &stubChain{id: "ethereum", symbol: "ETH", nonce: 5}

	a := NewAggregator(holdings, []ChainSource{chain}, 10*time.Millisecond, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.True(t, res.BalanceUSD.IsZero(), "timed-out holdings contribute nothing")
	assert.Equal(t, uint64(5), res.Nonce)
	assert.True(t, res.HasValue)
}

func TestCheckPartialChainFailure(t *testing.T) {
	bad := &stubChain{id: "bsc", symbol: "BNB", nativeErr: errors.New("down"), nonceErr: errors.New("down")}
	good := &stubChain{id: "ethereum", symbol: "ETH", native: dec("0.25"), nonce: 1}

	a := NewAggregator(nil, []ChainSource{bad, good}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.Equal(t, []string{"ethereum"}, res.Chains)
	assert.True(t, res.Coins["ETH"].Equal(dec("0.25")))
	assert.Equal(t, uint64(1), res.Nonce)
	assert.True(t, res.HasValue)
}

func TestCheckNonceIsMaxAcrossChains(t *testing.T) {
	a := NewAggregator(nil, []ChainSource{
		&stubChain{id: "ethereum", symbol: "ETH", nonce: 2},
		&stubChain{id: "polygon", symbol: "POL", nonce: 7},
		&stubChain{id: "bsc", symbol: "BNB", nonce: 4},
	}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.Equal(t, uint64(7), res.Nonce)
}

func TestCheckSameSymbolAccumulatesAcrossChains(t *testing.T) {
	a := NewAggregator(nil, []ChainSource{
		&stubChain{id: "ethereum", symbol: "ETH", native: dec("0.1")},
		&stubChain{id: "arbitrum", symbol: "ETH", native: dec("0.2")},
	}, time.Second, time.Second)
	res := a.Check(context.Background(), "0xabc")

	assert.True(t, res.Coins["ETH"].Equal(dec("0.3")), "ETH = %s", res.Coins["ETH"])
	assert.Equal(t, []string{"arbitrum", "ethereum"}, res.Chains, "chains come back sorted")
}

func TestNewAggregatorKeepsConfiguredTimeouts(t *testing.T) {
	a := NewAggregator(nil, nil, 2*time.Second, 3*time.Second)
	assert.Equal(t, 2*time.Second, a.holdingsTimeout)
	assert.Equal(t, 3*time.Second, a.chainTimeout)

	a = NewAggregator(nil, nil, 0, 0)
	assert.Equal(t, DefaultHoldingsTimeout, a.holdingsTimeout)
	assert.Equal(t, DefaultChainTimeout, a.chainTimeout)
}
