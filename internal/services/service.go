package services

import (
	"context"
	"fmt"

	"github.com/custodia-io/vault-ledger/internal/clients/pricefeed"
	"github.com/custodia-io/vault-ledger/internal/config"
	"github.com/custodia-io/vault-ledger/internal/db"
	"github.com/custodia-io/vault-ledger/internal/vault"
)

type Service struct {
	cfg   *config.Config
	vault *vault.Vault
	db    db.DbInterface
}

func NewService(cfg *config.Config, vlt *vault.Vault, database db.DbInterface) *Service {
	return &Service{
		cfg:   cfg,
		vault: vlt,
		db:    database,
	}
}

func (s *Service) Vault() *vault.Vault {
	return s.vault
}

func (s *Service) Db() db.DbInterface {
	return s.db
}

// SetOraclePriceSource builds a price feed client for the endpoint and
// installs it as the vault's active source. Retry and timeout settings
// carry over from the configured oracle.
func (s *Service) SetOraclePriceSource(ctx context.Context, caller, endpoint string) error {
	if endpoint == "" {
		return vault.ErrInvalidAddress
	}

	oracleCfg := s.cfg.Oracle
	oracleCfg.Endpoint = endpoint
	if err := oracleCfg.Validate(); err != nil {
		return fmt.Errorf("invalid oracle endpoint %q: %w", endpoint, err)
	}

	source := pricefeed.NewSourceWithMetrics(pricefeed.NewClient(&oracleCfg))
	return s.vault.SetPriceSource(ctx, caller, endpoint, source)
}
