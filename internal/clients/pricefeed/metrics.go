package pricefeed

import (
	"context"
	"time"

	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
)

type sourceWithMetrics struct {
	source Source
}

// NewSourceWithMetrics decorates a price source with latency metrics.
func NewSourceWithMetrics(source Source) Source {
	return &sourceWithMetrics{source: source}
}

func (s *sourceWithMetrics) LatestPrice(ctx context.Context) (Quote, error) {
	startTime := time.Now()
	quote, err := s.source.LatestPrice(ctx)
	metrics.RecordPriceFeedLatency(time.Since(startTime), "LatestPrice", err != nil)
	return quote, err
}
