package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/custodia-io/vault-ledger/internal/config"
)

const latestRoundPath = "/v1/rounds/latest"

// Client fetches native-asset quotes from an HTTP price feed.
type Client struct {
	httpClient *http.Client
	cfg        *config.OracleConfig
}

func NewClient(cfg *config.OracleConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Endpoint returns the configured feed address.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

type latestRoundResponse struct {
	Price     string `json:"price"`
	Decimals  uint8  `json:"decimals"`
	UpdatedAt int64  `json:"updated_at"`
}

func (c *Client) LatestPrice(ctx context.Context) (Quote, error) {
	callForQuote := func() (Quote, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+latestRoundPath, nil)
		if err != nil {
			return Quote{}, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return Quote{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return Quote{}, fmt.Errorf("price feed returned status %d", resp.StatusCode)
		}

		var round latestRoundResponse
		if err := json.NewDecoder(resp.Body).Decode(&round); err != nil {
			return Quote{}, fmt.Errorf("failed to decode price feed response: %w", err)
		}

		price, ok := math.NewIntFromString(round.Price)
		if !ok {
			return Quote{}, fmt.Errorf("price feed returned a non-integer price: %q", round.Price)
		}

		return Quote{
			Price:     price,
			Decimals:  round.Decimals,
			UpdatedAt: time.Unix(round.UpdatedAt, 0),
		}, nil
	}

	quote, err := clientCallWithRetry(ctx, callForQuote, c.cfg)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to get latest price from %s: %w", c.cfg.Endpoint, err)
	}

	return quote, nil
}

func clientCallWithRetry[T any](
	ctx context.Context, call retry.RetryableFuncWithData[T], cfg *config.OracleConfig,
) (T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Err(err).
				Msg("failed to call the price feed, retrying")
		}),
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
