package vault

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"

	"github.com/custodia-io/vault-ledger/internal/clients/pricefeed"
	"github.com/custodia-io/vault-ledger/internal/clients/tokenbank"
)

const (
	// NativeAsset is the sentinel identifier for the chain's intrinsic
	// currency.
	NativeAsset = tokenbank.NativeAsset

	// StableUnitDecimals is the fixed-point precision of the internal
	// stable unit used for cap comparisons across assets.
	StableUnitDecimals = uint8(18)

	// MaxPriceAge is the staleness bound for oracle quotes. A quote
	// exactly at the bound is still fresh.
	MaxPriceAge = 12 * time.Hour

	// MaxAssetDecimals bounds the fixed-point precision accepted from
	// price sources and asset metadata.
	MaxAssetDecimals = uint8(38)
)

var stableUnitScale = math.NewIntWithDecimal(1, int(StableUnitDecimals))

// freshNativeQuote fetches the latest native-asset quote and classifies
// its validity and freshness. Only the valuation path enforces these
// checks; the informational price read does not.
func (v *Vault) freshNativeQuote(ctx context.Context) (pricefeed.Quote, error) {
	quote, err := v.priceSource().LatestPrice(ctx)
	if err != nil {
		return pricefeed.Quote{}, fmt.Errorf("failed to get native asset price: %w", err)
	}
	if quote.Price.IsNil() || !quote.Price.IsPositive() {
		return pricefeed.Quote{}, ErrOracleInvalidPrice
	}
	if quote.Decimals > MaxAssetDecimals {
		return pricefeed.Quote{}, ErrOracleInvalidPrice
	}
	if v.now().Sub(quote.UpdatedAt) > MaxPriceAge {
		return pricefeed.Quote{}, ErrOracleStale
	}
	return quote, nil
}

// valuate converts an amount of an asset, in its native precision, into
// internal stable units. The native asset is priced through the oracle;
// every other registered asset is assumed pegged 1:1 to the unit of
// account and only rescaled across precisions. Intermediate products
// are widened through big.Int so a magnitude past the 256-bit range
// fails with ErrValueOverflow instead of panicking.
func (v *Vault) valuate(ctx context.Context, asset string, amount math.Int) (math.Int, error) {
	if asset == NativeAsset {
		quote, err := v.freshNativeQuote(ctx)
		if err != nil {
			return math.Int{}, err
		}
		price, err := rescaleDecimals(quote.Price, quote.Decimals, StableUnitDecimals)
		if err != nil {
			return math.Int{}, err
		}
		value := new(big.Int).Mul(amount.BigInt(), price.BigInt())
		value.Quo(value, stableUnitScale.BigInt())
		return intFromBig(value)
	}

	decimals, err := v.bank.Decimals(ctx, asset)
	if err != nil {
		return math.Int{}, fmt.Errorf("failed to read decimals for asset %s: %w", asset, err)
	}
	if decimals > MaxAssetDecimals {
		return math.Int{}, ErrDecimalsOutOfRange
	}
	return rescaleDecimals(amount, decimals, StableUnitDecimals)
}

// rescaleDecimals moves a fixed-point amount between precisions,
// truncating toward zero when precision is reduced. Widening fails with
// ErrValueOverflow past the 256-bit range.
func rescaleDecimals(amount math.Int, from, to uint8) (math.Int, error) {
	switch {
	case from == to:
		return amount, nil
	case from < to:
		return intFromBig(new(big.Int).Mul(amount.BigInt(), pow10(to-from)))
	default:
		return math.NewIntFromBigInt(new(big.Int).Quo(amount.BigInt(), pow10(from-to))), nil
	}
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

func intFromBig(value *big.Int) (math.Int, error) {
	if value.BitLen() > math.MaxBitLen {
		return math.Int{}, ErrValueOverflow
	}
	return math.NewIntFromBigInt(value), nil
}
