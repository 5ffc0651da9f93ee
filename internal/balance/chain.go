package balance

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"walletscan/pkg/chaincfg"
	"walletscan/pkg/logx"
)

// DefaultChainTimeout bounds one RPC call (balance or nonce).
const DefaultChainTimeout = 10 * time.Second

// weiExponent converts smallest-unit integers to native units (10^18).
const weiExponent = -18

// ChainSource is one chain's RPC endpoint as seen by the Aggregator.
// Implementations are read-only shared handles, safe for concurrent use.
type ChainSource interface {
	ID() string
	NativeSymbol() string
	Native(ctx context.Context, address string) (decimal.Decimal, error)
	Nonce(ctx context.Context, address string) (uint64, error)
}

// ChainClient wraps an EVM JSON-RPC endpoint.
type ChainClient struct {
	id     string
	name   string
	symbol string
	ec     *ethclient.Client
}

func (c *ChainClient) ID() string           { return c.id }
func (c *ChainClient) NativeSymbol() string { return c.symbol }

// Native returns the latest native balance in whole units.
func (c *ChainClient) Native(ctx context.Context, address string) (decimal.Decimal, error) {
	wei, err := c.ec.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(wei, weiExponent), nil
}

// Nonce returns the latest transaction count for the address.
func (c *ChainClient) Nonce(ctx context.Context, address string) (uint64, error) {
	return c.ec.NonceAt(ctx, common.HexToAddress(address), nil)
}

// DialChains builds a client per configured EVM chain. Endpoints that fail to
// dial or to answer a ChainID probe are skipped with a warning; the scan runs
// against whatever connected. Non-EVM chains are not served by this pipeline
// and are skipped up front.
func DialChains(ctx context.Context, cfg *chaincfg.Config) []ChainSource {
	timeout := cfg.ChainTimeout()
	var out []ChainSource
	for _, ch := range cfg.EVMChains() {
		ec, err := ethclient.DialContext(ctx, ch.RPCURL)
		if err != nil {
			logx.S().Warnw("chain dial failed", "chain", ch.ID, "err", err)
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		_, err = ec.ChainID(probeCtx)
		cancel()
		if err != nil {
			logx.S().Warnw("chain unreachable", "chain", ch.ID, "err", err)
			ec.Close()
			continue
		}
		logx.S().Infow("chain connected", "chain", ch.ID, "name", ch.Name, "symbol", ch.NativeSymbol)
		out = append(out, &ChainClient{id: ch.ID, name: ch.Name, symbol: ch.NativeSymbol, ec: ec})
	}
	return out
}
