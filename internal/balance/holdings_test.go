package balance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func holdingsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/all_token_list", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.Header.Get("AccessKey"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSumsAmountTimesPrice(t *testing.T) {
	srv := holdingsServer(t, http.StatusOK,
		`{"data":[{"symbol":"ETH","amount":1.5,"price":2000},{"symbol":"usdc","amount":10,"price":1}]}`)
	c := NewHoldingsClient(srv.URL, "test-key", time.Second)

	sample, err := c.Fetch(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.True(t, sample.TotalUSD.Equal(decimal.RequireFromString("3010")),
		"total = %s", sample.TotalUSD)
	assert.True(t, sample.Coins["ETH"].Equal(decimal.RequireFromString("1.5")))
	assert.True(t, sample.Coins["USDC"].Equal(decimal.RequireFromString("10")), "symbols are upper-cased")
}

func TestFetchDiscardsJunkEntries(t *testing.T) {
	srv := holdingsServer(t, http.StatusOK,
		`{"data":[{"symbol":"","amount":5,"price":1},{"symbol":"DAI","amount":-2,"price":1},{"symbol":"OK","amount":1,"price":null}]}`)
	c := NewHoldingsClient(srv.URL, "test-key", time.Second)

	sample, err := c.Fetch(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.Len(t, sample.Coins, 1)
	assert.True(t, sample.Coins["OK"].Equal(decimal.NewFromInt(1)))
	assert.True(t, sample.TotalUSD.IsZero())
}

func TestFetchRateLimited(t *testing.T) {
	srv := holdingsServer(t, http.StatusTooManyRequests, "")
	c := NewHoldingsClient(srv.URL, "test-key", time.Second)

	_, err := c.Fetch(context.Background(), "0xabc")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := holdingsServer(t, http.StatusInternalServerError, "")
	c := NewHoldingsClient(srv.URL, "test-key", time.Second)

	_, err := c.Fetch(context.Background(), "0xabc")
	require.Error(t, err)
}

func TestFetchMalformedResponse(t *testing.T) {
	srv := holdingsServer(t, http.StatusOK, `{"data": not-json`)
	c := NewHoldingsClient(srv.URL, "test-key", time.Second)

	_, err := c.Fetch(context.Background(), "0xabc")
	require.Error(t, err)
}

func TestFetchHonorsContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := NewHoldingsClient(srv.URL, "test-key", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Fetch(ctx, "0xabc")
	require.Error(t, err)
}
