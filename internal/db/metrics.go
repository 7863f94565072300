package db

import (
	"context"
	"time"

	"github.com/custodia-io/vault-ledger/internal/db/model"
	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveVaultEvent(ctx context.Context, event *model.VaultEventDocument) error {
	return d.run("SaveVaultEvent", func() error {
		return d.db.SaveVaultEvent(ctx, event)
	})
}

func (d *DbWithMetrics) GetVaultEventsByIdentity(
	ctx context.Context, identity string, limit int64,
) (result []model.VaultEventDocument, err error) {
	//nolint:errcheck
	d.run("GetVaultEventsByIdentity", func() error {
		result, err = d.db.GetVaultEventsByIdentity(ctx, identity, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) UpsertBalanceSnapshot(ctx context.Context, snapshot *model.BalanceSnapshotDocument) error {
	return d.run("UpsertBalanceSnapshot", func() error {
		return d.db.UpsertBalanceSnapshot(ctx, snapshot)
	})
}

func (d *DbWithMetrics) GetBalanceSnapshot(
	ctx context.Context, identity, asset string,
) (result *model.BalanceSnapshotDocument, err error) {
	//nolint:errcheck
	d.run("GetBalanceSnapshot", func() error {
		result, err = d.db.GetBalanceSnapshot(ctx, identity, asset)
		return err
	})

	return
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	metrics.RecordDbLatency(time.Since(startTime), method, err != nil)
	return err
}
