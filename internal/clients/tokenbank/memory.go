package tokenbank

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

var (
	ErrAssetUnknown         = errors.New("asset is unknown to the bank")
	ErrInsufficientHoldings = errors.New("holder has insufficient funds")
)

type assetInfo struct {
	symbol   string
	decimals uint8
}

// MemoryBank is an in-process Bank used by tests and local mode. It
// tracks per-holder holdings for each asset plus a single custody
// account owned by the vault.
type MemoryBank struct {
	mu       sync.RWMutex
	assets   map[string]assetInfo
	holdings map[string]map[string]math.Int
	custody  map[string]math.Int
}

func NewMemoryBank() *MemoryBank {
	b := &MemoryBank{
		assets:   make(map[string]assetInfo),
		holdings: make(map[string]map[string]math.Int),
		custody:  make(map[string]math.Int),
	}
	b.assets[NativeAsset] = assetInfo{symbol: NativeSymbol, decimals: NativeDecimals}
	return b
}

// CreateAsset registers asset metadata with the bank.
func (b *MemoryBank) CreateAsset(asset, symbol string, decimals uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assets[asset] = assetInfo{symbol: symbol, decimals: decimals}
}

// Mint credits a holder's holdings outside of custody.
func (b *MemoryBank) Mint(asset, holder string, amount math.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdings[asset] = b.ensureHoldings(asset)
	b.holdings[asset][holder] = b.balanceOf(asset, holder).Add(amount)
}

// Holdings returns a holder's funds outside of custody.
func (b *MemoryBank) Holdings(asset, holder string) math.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balanceOf(asset, holder)
}

func (b *MemoryBank) Pull(ctx context.Context, asset, from string, amount math.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.assets[asset]; !ok {
		return ErrAssetUnknown
	}

	held := b.balanceOf(asset, from)
	if held.LT(amount) {
		return fmt.Errorf("pull %s of %s from %s: %w", amount, asset, from, ErrInsufficientHoldings)
	}

	b.holdings[asset] = b.ensureHoldings(asset)
	b.holdings[asset][from] = held.Sub(amount)
	b.custody[asset] = b.custodyOf(asset).Add(amount)
	return nil
}

func (b *MemoryBank) Push(ctx context.Context, asset, to string, amount math.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.assets[asset]; !ok {
		return ErrAssetUnknown
	}

	custodied := b.custodyOf(asset)
	if custodied.LT(amount) {
		return fmt.Errorf("push %s of %s to %s: %w", amount, asset, to, ErrInsufficientHoldings)
	}

	b.custody[asset] = custodied.Sub(amount)
	b.holdings[asset] = b.ensureHoldings(asset)
	b.holdings[asset][to] = b.balanceOf(asset, to).Add(amount)
	return nil
}

func (b *MemoryBank) CustodyBalance(ctx context.Context, asset string) (math.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.assets[asset]; !ok {
		return math.Int{}, ErrAssetUnknown
	}
	return b.custodyOf(asset), nil
}

func (b *MemoryBank) Decimals(ctx context.Context, asset string) (uint8, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	info, ok := b.assets[asset]
	if !ok {
		return 0, ErrAssetUnknown
	}
	return info.decimals, nil
}

func (b *MemoryBank) Symbol(ctx context.Context, asset string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	info, ok := b.assets[asset]
	if !ok {
		return "", ErrAssetUnknown
	}
	return info.symbol, nil
}

func (b *MemoryBank) ensureHoldings(asset string) map[string]math.Int {
	if b.holdings[asset] == nil {
		b.holdings[asset] = make(map[string]math.Int)
	}
	return b.holdings[asset]
}

func (b *MemoryBank) balanceOf(asset, holder string) math.Int {
	if bal, ok := b.holdings[asset][holder]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (b *MemoryBank) custodyOf(asset string) math.Int {
	if bal, ok := b.custody[asset]; ok {
		return bal
	}
	return math.ZeroInt()
}
