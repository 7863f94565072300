package vault

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
)

var (
	ErrZeroAmount          = errors.New("amount must be positive")
	ErrAssetNotSupported   = errors.New("asset is not supported")
	ErrAlreadySupported    = errors.New("asset is already supported")
	ErrNativeAssetReserved = errors.New("native asset is registered at construction")
	ErrUnauthorized        = errors.New("caller does not hold the required capability")
	ErrUnknownCapability   = errors.New("unknown capability")
	ErrCapExceeded         = errors.New("deposit would exceed the global cap")
	ErrInsufficientFunds   = errors.New("custodied funds are less than the requested amount")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrNativeValueMismatch = errors.New("attached native value does not match the deposit amount")
	ErrValueOverflow       = errors.New("valuation exceeds the representable amount range")
	ErrDecimalsOutOfRange  = errors.New("asset precision is outside the supported range")
	ErrOracleInvalidPrice  = errors.New("oracle reported an unusable price")
	ErrOracleStale         = errors.New("oracle price is older than the staleness bound")
	ErrReentrancy          = errors.New("a mutating operation is already in flight")
)

// InsufficientBalanceError is returned when a withdrawal exceeds the
// caller's stored balance for the asset.
type InsufficientBalanceError struct {
	Requested math.Int
	Available math.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s", e.Requested, e.Available)
}

func IsInsufficientBalanceError(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}

// WithdrawLimitError is returned when a native withdrawal exceeds the
// per-transaction limit.
type WithdrawLimitError struct {
	Requested math.Int
	Limit     math.Int
}

func (e *WithdrawLimitError) Error() string {
	return fmt.Sprintf("withdraw limit exceeded: requested %s, limit %s", e.Requested, e.Limit)
}

func IsWithdrawLimitError(err error) bool {
	var target *WithdrawLimitError
	return errors.As(err, &target)
}
