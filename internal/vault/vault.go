// Package vault implements the custodial ledger core: per-identity
// multi-asset balances, a USD-equivalent global deposit cap checked
// against a live price feed, capability-gated administration, and
// serialized deposit/withdraw/emergency-withdraw state transitions.
package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/custodia-io/vault-ledger/internal/clients/pricefeed"
	"github.com/custodia-io/vault-ledger/internal/clients/tokenbank"
)

type balanceKey struct {
	identity string
	asset    string
}

// Params carries everything a Vault needs at construction. The operator
// identity is granted all three capabilities.
type Params struct {
	Operator            string
	DepositCap          math.Int
	NativeWithdrawLimit math.Int
	PriceSourceAddr     string
	Source              pricefeed.Source
	Bank                tokenbank.Bank
	Sink                EventSink
	Now                 func() time.Time
}

// Vault owns the ledger state. All mutating entry points are serialized
// by the entry guard; reads only take the state lock, so they may be
// observed concurrently with an in-flight mutation but never see a
// partially-applied one.
type Vault struct {
	guard *entryGuard
	bank  tokenbank.Bank
	sink  EventSink
	now   func() time.Time

	mu                  sync.RWMutex
	roles               *roleRegistry
	assets              *assetRegistry
	source              pricefeed.Source
	sourceAddr          string
	balances            map[balanceKey]math.Int
	totalValue          math.Int
	depositCap          math.Int
	nativeWithdrawLimit math.Int
	deposits            uint64
	withdrawals         uint64
}

func New(params Params) (*Vault, error) {
	if params.Operator == "" {
		return nil, errors.New("operator identity is required")
	}
	if params.Bank == nil {
		return nil, errors.New("token bank is required")
	}
	if params.Source == nil {
		return nil, errors.New("price source is required")
	}

	sink := params.Sink
	if sink == nil {
		sink = noopSink{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Vault{
		guard:               newEntryGuard(),
		bank:                params.Bank,
		sink:                sink,
		now:                 now,
		roles:               newRoleRegistry(params.Operator),
		assets:              newAssetRegistry(),
		source:              params.Source,
		sourceAddr:          params.PriceSourceAddr,
		balances:            make(map[balanceKey]math.Int),
		totalValue:          math.ZeroInt(),
		depositCap:          orZero(params.DepositCap),
		nativeWithdrawLimit: orZero(params.NativeWithdrawLimit),
	}, nil
}

// Deposit moves amount of asset from the caller's external holdings
// into custody and credits the caller's balance. For the native asset
// the attached value must match the amount. The converted stable-unit
// value must keep the running total at or under the global cap.
func (v *Vault) Deposit(ctx context.Context, caller, asset string, amount, attachedNative math.Int) (Event, error) {
	if err := v.guard.acquire(); err != nil {
		return Event{}, err
	}
	defer v.guard.release()

	if amount.IsNil() || !amount.IsPositive() {
		return Event{}, ErrZeroAmount
	}
	if !v.IsSupported(asset) {
		return Event{}, ErrAssetNotSupported
	}
	if asset == NativeAsset && !orZero(attachedNative).Equal(amount) {
		return Event{}, ErrNativeValueMismatch
	}

	value, err := v.valuate(ctx, asset, amount)
	if err != nil {
		return Event{}, err
	}

	v.mu.RLock()
	total, depositCap := v.totalValue, v.depositCap
	v.mu.RUnlock()
	projected := new(big.Int).Add(total.BigInt(), value.BigInt())
	if projected.Cmp(depositCap.BigInt()) > 0 {
		return Event{}, ErrCapExceeded
	}

	if err := v.bank.Pull(ctx, asset, caller, amount); err != nil {
		return Event{}, fmt.Errorf("failed to pull deposit into custody: %w", err)
	}

	key := balanceKey{identity: caller, asset: asset}
	v.mu.Lock()
	v.balances[key] = v.balanceLocked(key).Add(amount)
	v.totalValue = v.totalValue.Add(value)
	v.deposits++
	newBalance, newTotal := v.balances[key], v.totalValue
	v.mu.Unlock()

	event := newEvent(EventDepositMade, v.now())
	event.Identity = caller
	event.Asset = asset
	event.Amount = amount
	event.Value = value
	event.Balance = newBalance
	event.Total = newTotal
	v.emit(ctx, event)
	return event, nil
}

// Withdraw debits the caller's balance and pushes amount of asset back
// to the caller. The global total is decremented by the value of the
// amount at the current price, not the price at deposit time. Balance
// effects are applied before the external transfer; a failed transfer
// rolls them back.
func (v *Vault) Withdraw(ctx context.Context, caller, asset string, amount math.Int) (Event, error) {
	if err := v.guard.acquire(); err != nil {
		return Event{}, err
	}
	defer v.guard.release()

	if amount.IsNil() || !amount.IsPositive() {
		return Event{}, ErrZeroAmount
	}
	if !v.IsSupported(asset) {
		return Event{}, ErrAssetNotSupported
	}

	key := balanceKey{identity: caller, asset: asset}
	v.mu.RLock()
	available := v.balanceLocked(key)
	limit := v.nativeWithdrawLimit
	v.mu.RUnlock()

	if amount.GT(available) {
		return Event{}, &InsufficientBalanceError{Requested: amount, Available: available}
	}
	if asset == NativeAsset && amount.GT(limit) {
		return Event{}, &WithdrawLimitError{Requested: amount, Limit: limit}
	}

	value, err := v.valuate(ctx, asset, amount)
	if err != nil {
		return Event{}, err
	}

	v.mu.Lock()
	prevTotal := v.totalValue
	v.balances[key] = available.Sub(amount)
	v.totalValue = v.totalValue.Sub(value)
	if v.totalValue.IsNegative() {
		v.totalValue = math.ZeroInt()
	}
	v.withdrawals++
	newBalance, newTotal := v.balances[key], v.totalValue
	v.mu.Unlock()

	if err := v.bank.Push(ctx, asset, caller, amount); err != nil {
		v.mu.Lock()
		v.balances[key] = available
		v.totalValue = prevTotal
		v.withdrawals--
		v.mu.Unlock()
		return Event{}, fmt.Errorf("failed to push withdrawal out of custody: %w", err)
	}

	event := newEvent(EventWithdrawalMade, v.now())
	event.Identity = caller
	event.Asset = asset
	event.Amount = amount
	event.Value = value
	event.Balance = newBalance
	event.Total = newTotal
	v.emit(ctx, event)
	return event, nil
}

// EmergencyWithdraw sweeps amount of asset from custody directly to
// destination. It is a custodian-level operation: per-identity balances
// and the global total are left untouched.
func (v *Vault) EmergencyWithdraw(ctx context.Context, caller, asset string, amount math.Int, destination string) error {
	if err := v.guard.acquire(); err != nil {
		return err
	}
	defer v.guard.release()

	if !v.HasCapability(CapabilityEmergency, caller) {
		return ErrUnauthorized
	}

	custodied, err := v.bank.CustodyBalance(ctx, asset)
	if err != nil {
		return fmt.Errorf("failed to read custodied balance: %w", err)
	}
	if custodied.LT(orZero(amount)) {
		return ErrInsufficientFunds
	}

	if err := v.bank.Push(ctx, asset, destination, amount); err != nil {
		return fmt.Errorf("failed to push emergency withdrawal: %w", err)
	}
	return nil
}

// RegisterAsset makes an asset eligible for deposit and withdrawal. The
// asset's symbol is resolved through the bank; a lookup failure fails
// the registration.
func (v *Vault) RegisterAsset(ctx context.Context, caller, asset string) (Event, error) {
	if !v.HasCapability(CapabilityConfig, caller) {
		return Event{}, ErrUnauthorized
	}
	if asset == NativeAsset {
		return Event{}, ErrNativeAssetReserved
	}
	if v.IsSupported(asset) {
		return Event{}, ErrAlreadySupported
	}

	symbol, err := v.bank.Symbol(ctx, asset)
	if err != nil {
		return Event{}, fmt.Errorf("failed to resolve asset symbol: %w", err)
	}

	v.mu.Lock()
	if v.assets.isSupported(asset) {
		v.mu.Unlock()
		return Event{}, ErrAlreadySupported
	}
	v.assets.add(asset)
	v.mu.Unlock()

	event := newEvent(EventAssetAdded, v.now())
	event.Asset = asset
	event.Symbol = symbol
	v.emit(ctx, event)
	return event, nil
}

// Grant assigns a capability to an identity. Granting an already-held
// capability is a no-op and emits nothing.
func (v *Vault) Grant(ctx context.Context, caller string, capability Capability, identity string) error {
	if !capability.valid() {
		return ErrUnknownCapability
	}
	if !v.HasCapability(CapabilityConfig, caller) {
		return ErrUnauthorized
	}

	v.mu.Lock()
	granted := v.roles.grant(capability, identity)
	v.mu.Unlock()
	if !granted {
		return nil
	}

	event := newEvent(EventRoleGranted, v.now())
	event.Identity = identity
	event.Capability = capability
	v.emit(ctx, event)
	return nil
}

// UpdateGlobalCap replaces the global deposit cap unconditionally. A cap
// below the current total simply blocks further deposits.
func (v *Vault) UpdateGlobalCap(ctx context.Context, caller string, newCap math.Int) error {
	if !v.HasCapability(CapabilityConfig, caller) {
		return ErrUnauthorized
	}

	v.mu.Lock()
	v.depositCap = orZero(newCap)
	v.mu.Unlock()

	event := newEvent(EventGlobalCapUpdated, v.now())
	event.Cap = orZero(newCap)
	v.emit(ctx, event)
	return nil
}

// UpdateWithdrawLimit replaces the per-transaction native withdrawal
// limit, denominated in native-asset units.
func (v *Vault) UpdateWithdrawLimit(ctx context.Context, caller string, newLimit math.Int) error {
	if !v.HasCapability(CapabilityConfig, caller) {
		return ErrUnauthorized
	}

	v.mu.Lock()
	v.nativeWithdrawLimit = orZero(newLimit)
	v.mu.Unlock()

	event := newEvent(EventWithdrawLimitUpdated, v.now())
	event.Limit = orZero(newLimit)
	v.emit(ctx, event)
	return nil
}

// SetPriceSource swaps the active price source. The feed-updated event
// is emitted before the swap commits.
func (v *Vault) SetPriceSource(ctx context.Context, caller, addr string, source pricefeed.Source) error {
	if !v.HasCapability(CapabilityOracle, caller) {
		return ErrUnauthorized
	}
	if addr == "" || source == nil {
		return ErrInvalidAddress
	}

	event := newEvent(EventPriceSourceUpdated, v.now())
	event.Source = addr
	v.emit(ctx, event)

	v.mu.Lock()
	v.source = source
	v.sourceAddr = addr
	v.mu.Unlock()
	return nil
}

// Balance returns the stored balance for (identity, asset) in the
// asset's native precision. Unrestricted read.
func (v *Vault) Balance(identity, asset string) math.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.balanceLocked(balanceKey{identity: identity, asset: asset})
}

// NativePrice returns the latest oracle quote without enforcing
// validity or staleness; only the valuation path does that.
func (v *Vault) NativePrice(ctx context.Context) (pricefeed.Quote, error) {
	return v.priceSource().LatestPrice(ctx)
}

func (v *Vault) IsSupported(asset string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.assets.isSupported(asset)
}

func (v *Vault) HasCapability(capability Capability, identity string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.roles.has(capability, identity)
}

// TotalValue returns the running global total in stable units.
func (v *Vault) TotalValue() math.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totalValue
}

func (v *Vault) DepositCap() math.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.depositCap
}

func (v *Vault) NativeWithdrawLimit() math.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.nativeWithdrawLimit
}

func (v *Vault) DepositCount() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.deposits
}

func (v *Vault) WithdrawalCount() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.withdrawals
}

// PriceSourceAddr returns the address of the active price source.
func (v *Vault) PriceSourceAddr() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sourceAddr
}

func (v *Vault) priceSource() pricefeed.Source {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.source
}

func (v *Vault) balanceLocked(key balanceKey) math.Int {
	if bal, ok := v.balances[key]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (v *Vault) emit(ctx context.Context, event Event) {
	if err := v.sink.Publish(ctx, event); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("event_type", event.Type.String()).
			Msg("failed to publish vault event")
	}
}

func orZero(amount math.Int) math.Int {
	if amount.IsNil() {
		return math.ZeroInt()
	}
	return amount
}

type noopSink struct{}

func (noopSink) Publish(context.Context, Event) error { return nil }
