package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHoldingsTimeout bounds one token-holdings API call.
const DefaultHoldingsTimeout = 15 * time.Second

// ErrRateLimited marks a 429 from the holdings API. Treated as absent data
// for this call only, never as a failed candidate.
var ErrRateLimited = errors.New("holdings rate limited")

// HoldingsSample is one aggregator-API observation for an address.
type HoldingsSample struct {
	Coins    map[string]decimal.Decimal
	TotalUSD decimal.Decimal
}

// HoldingsSource is the token-holdings query as seen by the Aggregator.
type HoldingsSource interface {
	Fetch(ctx context.Context, address string) (*HoldingsSample, error)
}

// HoldingsClient queries a DeBank-style token-holdings aggregator:
// GET <base>/v1/user/all_token_list?id=<address> with an AccessKey header.
type HoldingsClient struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

func NewHoldingsClient(baseURL, accessKey string, timeout time.Duration) *HoldingsClient {
	if timeout <= 0 {
		timeout = DefaultHoldingsTimeout
	}
	return &HoldingsClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type tokenEntry struct {
	Symbol string       `json:"symbol"`
	Amount *json.Number `json:"amount"`
	Price  *json.Number `json:"price"`
}

type tokenListResponse struct {
	Data []tokenEntry `json:"data"`
}

// Fetch returns the per-symbol amounts and the USD total over amount*price.
// Entries with a non-positive amount or empty symbol are discarded. Amounts
// are kept as exact decimals so financial totals do not drift.
func (c *HoldingsClient) Fetch(ctx context.Context, address string) (*HoldingsSample, error) {
	u := fmt.Sprintf("%s/v1/user/all_token_list?id=%s", c.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("AccessKey", c.accessKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holdings status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload tokenListResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode holdings response: %w", err)
	}

	sample := &HoldingsSample{
		Coins:    make(map[string]decimal.Decimal),
		TotalUSD: decimal.Zero,
	}
	for _, t := range payload.Data {
		sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if sym == "" || t.Amount == nil {
			continue
		}
		amt, err := decimal.NewFromString(t.Amount.String())
		if err != nil || !amt.IsPositive() {
			continue
		}
		price := decimal.Zero
		if t.Price != nil {
			if p, err := decimal.NewFromString(t.Price.String()); err == nil {
				price = p
			}
		}
		sample.Coins[sym] = sample.Coins[sym].Add(amt)
		sample.TotalUSD = sample.TotalUSD.Add(amt.Mul(price))
	}
	return sample, nil
}
