package services

import (
	"context"
	"errors"
	"math/big"

	"github.com/custodia-io/vault-ledger/internal/db"
	"github.com/custodia-io/vault-ledger/internal/db/model"
	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
	"github.com/custodia-io/vault-ledger/internal/vault"
)

// Recorder is the vault's event sink. It indexes every event into the
// event store, mirrors balances into snapshots, bumps the Prometheus
// counters, and forwards the event to the next sink (the queue
// publisher). Failures are reported back but never abort the ledger
// operation that produced the event.
type Recorder struct {
	db   db.DbInterface
	next vault.EventSink
}

func NewRecorder(database db.DbInterface, next vault.EventSink) *Recorder {
	return &Recorder{db: database, next: next}
}

func (r *Recorder) Publish(ctx context.Context, event vault.Event) error {
	var errs []error

	if r.db != nil {
		doc := documentFromEvent(event)
		if err := r.db.SaveVaultEvent(ctx, &doc); err != nil && !db.IsDuplicateKeyError(err) {
			metrics.IncEventPublishError()
			errs = append(errs, err)
		}
		if snapshot, ok := snapshotFromEvent(event); ok {
			if err := r.db.UpsertBalanceSnapshot(ctx, &snapshot); err != nil {
				metrics.IncEventPublishError()
				errs = append(errs, err)
			}
		}
	}

	switch event.Type {
	case vault.EventDepositMade:
		metrics.IncDeposits()
	case vault.EventWithdrawalMade:
		metrics.IncWithdrawals()
	}
	if !event.Total.IsNil() {
		total, _ := new(big.Float).SetInt(event.Total.BigInt()).Float64()
		metrics.SetVaultTotalValue(total)
	}

	if r.next != nil {
		if err := r.next.Publish(ctx, event); err != nil {
			metrics.IncEventPublishError()
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func documentFromEvent(event vault.Event) model.VaultEventDocument {
	doc := model.VaultEventDocument{
		ID:         event.ID,
		Type:       event.Type.String(),
		At:         event.At,
		Identity:   event.Identity,
		Asset:      event.Asset,
		Symbol:     event.Symbol,
		Capability: event.Capability.String(),
		Source:     event.Source,
	}
	if !event.Amount.IsNil() {
		doc.Amount = event.Amount.String()
	}
	if !event.Value.IsNil() {
		doc.Value = event.Value.String()
	}
	if !event.Cap.IsNil() {
		doc.Cap = event.Cap.String()
	}
	if !event.Limit.IsNil() {
		doc.Limit = event.Limit.String()
	}
	return doc
}

func snapshotFromEvent(event vault.Event) (model.BalanceSnapshotDocument, bool) {
	if event.Type != vault.EventDepositMade && event.Type != vault.EventWithdrawalMade {
		return model.BalanceSnapshotDocument{}, false
	}
	return model.BalanceSnapshotDocument{
		Identity:  event.Identity,
		Asset:     event.Asset,
		Amount:    event.Balance.String(),
		UpdatedAt: event.At,
	}, true
}
