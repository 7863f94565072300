package tokenbank

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	token  = "0x1111111111111111111111111111111111111111"
	holder = "0x2222222222222222222222222222222222222222"
)

func TestMemoryBank_NativeMetadata(t *testing.T) {
	ctx := t.Context()
	bank := NewMemoryBank()

	symbol, err := bank.Symbol(ctx, NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, NativeSymbol, symbol)

	decimals, err := bank.Decimals(ctx, NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint8(NativeDecimals), decimals)
}

func TestMemoryBank_PullPush(t *testing.T) {
	ctx := t.Context()
	bank := NewMemoryBank()
	bank.CreateAsset(token, "TKN", 6)
	bank.Mint(token, holder, math.NewInt(100))

	require.NoError(t, bank.Pull(ctx, token, holder, math.NewInt(60)))
	assert.Equal(t, "40", bank.Holdings(token, holder).String())

	custody, err := bank.CustodyBalance(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "60", custody.String())

	require.NoError(t, bank.Push(ctx, token, holder, math.NewInt(10)))
	assert.Equal(t, "50", bank.Holdings(token, holder).String())

	custody, err = bank.CustodyBalance(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "50", custody.String())
}

func TestMemoryBank_Failures(t *testing.T) {
	ctx := t.Context()
	bank := NewMemoryBank()
	bank.CreateAsset(token, "TKN", 6)

	t.Run("unknown asset", func(t *testing.T) {
		unknown := "0x3333333333333333333333333333333333333333"
		require.ErrorIs(t, bank.Pull(ctx, unknown, holder, math.NewInt(1)), ErrAssetUnknown)
		require.ErrorIs(t, bank.Push(ctx, unknown, holder, math.NewInt(1)), ErrAssetUnknown)
		_, err := bank.CustodyBalance(ctx, unknown)
		require.ErrorIs(t, err, ErrAssetUnknown)
		_, err = bank.Decimals(ctx, unknown)
		require.ErrorIs(t, err, ErrAssetUnknown)
		_, err = bank.Symbol(ctx, unknown)
		require.ErrorIs(t, err, ErrAssetUnknown)
	})
	t.Run("overdrawn pull", func(t *testing.T) {
		err := bank.Pull(ctx, token, holder, math.NewInt(1))
		require.ErrorIs(t, err, ErrInsufficientHoldings)
	})
	t.Run("overdrawn push", func(t *testing.T) {
		err := bank.Push(ctx, token, holder, math.NewInt(1))
		require.ErrorIs(t, err, ErrInsufficientHoldings)
	})
}
