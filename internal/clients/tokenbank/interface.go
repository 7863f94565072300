package tokenbank

import (
	"context"

	"cosmossdk.io/math"
)

// NativeAsset is the sentinel identifier for the chain's intrinsic
// currency. It is address-like so it can share the asset keyspace, and
// it always carries 18 fractional digits.
const (
	NativeAsset    = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	NativeDecimals = uint8(18)
	NativeSymbol   = "NATIVE"
)

// Bank is the external asset capability the vault custodies through.
// Pull moves funds from a holder into custody, Push moves funds from
// custody to a recipient; both apply to the native sentinel as well as
// registered fungible assets.
type Bank interface {
	Pull(ctx context.Context, asset, from string, amount math.Int) error
	Push(ctx context.Context, asset, to string, amount math.Int) error
	CustodyBalance(ctx context.Context, asset string) (math.Int, error)
	Decimals(ctx context.Context, asset string) (uint8, error)
	Symbol(ctx context.Context, asset string) (string, error)
}
