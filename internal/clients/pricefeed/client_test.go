package pricefeed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-io/vault-ledger/internal/config"
)

func testOracleConfig(endpoint string) *config.OracleConfig {
	return &config.OracleConfig{
		Endpoint:      endpoint,
		Timeout:       time.Second,
		MaxRetryTimes: 3,
		RetryInterval: time.Millisecond,
	}
}

func TestClient_LatestPrice(t *testing.T) {
	updatedAt := time.Now().Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, latestRoundPath, r.URL.Path)
		fmt.Fprintf(w, `{"price":"200000000000","decimals":8,"updated_at":%d}`, updatedAt)
	}))
	defer server.Close()

	client := NewClient(testOracleConfig(server.URL))
	quote, err := client.LatestPrice(t.Context())
	require.NoError(t, err)

	assert.Equal(t, math.NewIntWithDecimal(2000, 8).String(), quote.Price.String())
	assert.Equal(t, uint8(8), quote.Decimals)
	assert.Equal(t, updatedAt, quote.UpdatedAt.Unix())
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"price":"1","decimals":8,"updated_at":0}`)
	}))
	defer server.Close()

	client := NewClient(testOracleConfig(server.URL))
	quote, err := client.LatestPrice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "1", quote.Price.String())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testOracleConfig(server.URL))
	_, err := client.LatestPrice(t.Context())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RejectsMalformedPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"price":"not-a-number","decimals":8,"updated_at":0}`)
	}))
	defer server.Close()

	client := NewClient(testOracleConfig(server.URL))
	_, err := client.LatestPrice(t.Context())
	require.ErrorContains(t, err, "non-integer price")
}

func TestStaticSource(t *testing.T) {
	source := NewStaticSource(Quote{Price: math.NewInt(5), Decimals: 8})

	quote, err := source.LatestPrice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "5", quote.Price.String())

	source.SetQuote(Quote{Price: math.NewInt(7), Decimals: 8})
	quote, err = source.LatestPrice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "7", quote.Price.String())
}
