package db

import (
	"context"

	"github.com/custodia-io/vault-ledger/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	SaveVaultEvent(ctx context.Context, event *model.VaultEventDocument) error
	GetVaultEventsByIdentity(ctx context.Context, identity string, limit int64) ([]model.VaultEventDocument, error)
	UpsertBalanceSnapshot(ctx context.Context, snapshot *model.BalanceSnapshotDocument) error
	GetBalanceSnapshot(ctx context.Context, identity, asset string) (*model.BalanceSnapshotDocument, error)
}
