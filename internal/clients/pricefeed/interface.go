package pricefeed

import (
	"context"
	"time"

	"cosmossdk.io/math"
)

// Quote is a single price observation for the native asset, reported in
// the source's own fixed-point scale.
type Quote struct {
	Price     math.Int
	Decimals  uint8
	UpdatedAt time.Time
}

// Source resolves the latest native-asset price. Validity and staleness
// classification happen in the vault's valuation path, not here.
type Source interface {
	LatestPrice(ctx context.Context) (Quote, error)
}
