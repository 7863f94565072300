package config

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
)

type VaultConfig struct {
	// Operator is the identity granted all capabilities at startup.
	Operator string `mapstructure:"operator"`
	// DepositCap is the initial global cap in 18-decimal stable units.
	DepositCap string `mapstructure:"deposit-cap"`
	// NativeWithdrawLimit is the per-transaction native withdrawal
	// limit in native-asset units.
	NativeWithdrawLimit string `mapstructure:"native-withdraw-limit"`
}

func (cfg *VaultConfig) Validate() error {
	if cfg.Operator == "" {
		return errors.New("vault operator identity is required")
	}
	if _, err := cfg.ParsedDepositCap(); err != nil {
		return err
	}
	if _, err := cfg.ParsedNativeWithdrawLimit(); err != nil {
		return err
	}
	return nil
}

func (cfg *VaultConfig) ParsedDepositCap() (math.Int, error) {
	return parseAmount("deposit-cap", cfg.DepositCap)
}

func (cfg *VaultConfig) ParsedNativeWithdrawLimit() (math.Int, error) {
	return parseAmount("native-withdraw-limit", cfg.NativeWithdrawLimit)
}

func parseAmount(key, raw string) (math.Int, error) {
	if raw == "" {
		return math.Int{}, fmt.Errorf("%s is required", key)
	}
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	if amount.IsNegative() {
		return math.Int{}, fmt.Errorf("%s must not be negative", key)
	}
	return amount, nil
}
