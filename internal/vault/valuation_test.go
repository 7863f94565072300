package vault

import (
	"math/big"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-io/vault-ledger/internal/clients/pricefeed"
)

func TestValuate_Native(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	// 1.0 native at $2000 (8 oracle decimals) is 2000.0 stable units.
	value, err := f.vault.valuate(ctx, NativeAsset, native(1))
	require.NoError(t, err)
	assert.Equal(t, stable(2000).String(), value.String())

	// Fractional amounts scale linearly: 0.5 native is 1000.0.
	half := native(1).QuoRaw(2)
	value, err = f.vault.valuate(ctx, NativeAsset, half)
	require.NoError(t, err)
	assert.Equal(t, stable(1000).String(), value.String())
}

func TestValuate_PeggedAsset(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	f.registerUSD(t)

	// 1.0 of a 6-decimal pegged asset is 1.0 stable units.
	value, err := f.vault.valuate(ctx, tokenUSD, math.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, stable(1).String(), value.String())
}

func TestValuate_StalenessBoundary(t *testing.T) {
	ctx := t.Context()

	t.Run("quote exactly at the bound is fresh", func(t *testing.T) {
		f := newFixture(t)
		f.source.SetQuote(pricefeed.Quote{
			Price:     math.NewIntWithDecimal(2000, 8),
			Decimals:  8,
			UpdatedAt: f.clock.Now().Add(-MaxPriceAge),
		})

		_, err := f.vault.valuate(ctx, NativeAsset, native(1))
		require.NoError(t, err)
	})
	t.Run("quote just past the bound is stale", func(t *testing.T) {
		f := newFixture(t)
		f.source.SetQuote(pricefeed.Quote{
			Price:     math.NewIntWithDecimal(2000, 8),
			Decimals:  8,
			UpdatedAt: f.clock.Now().Add(-MaxPriceAge - time.Nanosecond),
		})

		_, err := f.vault.valuate(ctx, NativeAsset, native(1))
		require.ErrorIs(t, err, ErrOracleStale)
	})
	t.Run("time advancing past the bound turns a fresh quote stale", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Advance(MaxPriceAge + time.Second)

		_, err := f.vault.valuate(ctx, NativeAsset, native(1))
		require.ErrorIs(t, err, ErrOracleStale)
	})
}

func TestValuate_InvalidPrice(t *testing.T) {
	ctx := t.Context()

	for _, price := range []math.Int{math.ZeroInt(), math.NewInt(-1)} {
		f := newFixture(t)
		f.source.SetQuote(pricefeed.Quote{
			Price:     price,
			Decimals:  8,
			UpdatedAt: f.clock.Now(),
		})

		_, err := f.vault.valuate(ctx, NativeAsset, native(1))
		require.ErrorIs(t, err, ErrOracleInvalidPrice)
	}
}

func TestRescaleDecimals(t *testing.T) {
	testCases := []struct {
		name     string
		amount   math.Int
		from, to uint8
		want     math.Int
	}{
		{name: "same precision", amount: math.NewInt(123), from: 8, to: 8, want: math.NewInt(123)},
		{name: "scale up", amount: math.NewInt(5), from: 6, to: 18, want: math.NewIntWithDecimal(5, 12)},
		{name: "scale down truncates", amount: math.NewInt(199), from: 4, to: 2, want: math.NewInt(1)},
		{name: "oracle to stable", amount: math.NewIntWithDecimal(2000, 8), from: 8, to: 18, want: math.NewIntWithDecimal(2000, 18)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rescaleDecimals(tc.amount, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.want.String(), got.String())
		})
	}

	t.Run("widening past 256 bits fails", func(t *testing.T) {
		huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 250))
		_, err := rescaleDecimals(huge, 6, 18)
		require.ErrorIs(t, err, ErrValueOverflow)
	})
}

func TestValuate_OverflowingAmount(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	// The largest parseable amount: 2^255 - 1 native units.
	huge := math.NewIntFromBigInt(new(big.Int).Sub(
		new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1),
	))

	_, err := f.vault.valuate(ctx, NativeAsset, huge)
	require.ErrorIs(t, err, ErrValueOverflow)

	// The same magnitude through the deposit entry point is rejected
	// before any state or custody change.
	_, err = f.vault.Deposit(ctx, user, NativeAsset, huge, huge)
	require.ErrorIs(t, err, ErrValueOverflow)
	assert.True(t, f.vault.Balance(user, NativeAsset).IsZero())
	assert.True(t, f.vault.TotalValue().IsZero())
	assert.Zero(t, f.vault.DepositCount())

	// Withdrawals valuate the same way; an absurd stored magnitude can
	// never exist, so exercise the path directly.
	_, err = f.vault.valuate(ctx, NativeAsset, huge)
	require.ErrorIs(t, err, ErrValueOverflow)
}

func TestValuate_DecimalsOutOfRange(t *testing.T) {
	ctx := t.Context()

	t.Run("oracle decimals past the bound", func(t *testing.T) {
		f := newFixture(t)
		f.source.SetQuote(pricefeed.Quote{
			Price:     math.NewIntWithDecimal(2000, 8),
			Decimals:  200,
			UpdatedAt: f.clock.Now(),
		})

		_, err := f.vault.valuate(ctx, NativeAsset, native(1))
		require.ErrorIs(t, err, ErrOracleInvalidPrice)
	})
	t.Run("asset decimals past the bound", func(t *testing.T) {
		f := newFixture(t)
		weird := "0x5eed000000000000000000000000000000000bad"
		f.bank.CreateAsset(weird, "WEIRD", 200)
		_, err := f.vault.RegisterAsset(ctx, operator, weird)
		require.NoError(t, err)

		_, err = f.vault.valuate(ctx, weird, math.NewInt(1))
		require.ErrorIs(t, err, ErrDecimalsOutOfRange)

		f.bank.Mint(weird, user, math.NewInt(1))
		_, err = f.vault.Deposit(ctx, user, weird, math.NewInt(1), math.ZeroInt())
		require.ErrorIs(t, err, ErrDecimalsOutOfRange)
		assert.True(t, f.vault.Balance(user, weird).IsZero())
	})
}
