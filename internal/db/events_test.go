//go:build integration

package db_test

import (
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-io/vault-ledger/internal/config"
	"github.com/custodia-io/vault-ledger/internal/db"
	"github.com/custodia-io/vault-ledger/internal/db/model"
	"github.com/custodia-io/vault-ledger/pkg"
)

// Requires a reachable MongoDB, e.g.
//
//	docker run -p 27017:27017 mongo
//	VAULT_LEDGER_TEST_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./internal/db/...
func testDatabase(t *testing.T) *db.Database {
	t.Helper()

	uri := os.Getenv("VAULT_LEDGER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("VAULT_LEDGER_TEST_MONGO_URI is not set")
	}

	cfg := config.DbConfig{
		Username: os.Getenv("VAULT_LEDGER_TEST_MONGO_USER"),
		Password: os.Getenv("VAULT_LEDGER_TEST_MONGO_PASS"),
		Address:  uri,
		DbName:   "vault-ledger-test-" + gofakeit.LetterN(8),
	}

	require.NoError(t, model.Setup(t.Context(), &cfg))

	database, err := db.New(t.Context(), cfg)
	require.NoError(t, err)
	require.NoError(t, database.Ping(t.Context()))
	t.Cleanup(func() {
		_ = database.Shutdown(t.Context())
	})
	return database
}

func randomDepositEvent(identity string, at time.Time) model.VaultEventDocument {
	return model.VaultEventDocument{
		ID:       uuid.NewString(),
		Type:     "vault.deposit_made",
		At:       at,
		Identity: identity,
		Asset:    pkg.RandAddress(),
		Amount:   gofakeit.Numerify("1#########"),
		Value:    gofakeit.Numerify("2#########"),
	}
}

func TestSaveVaultEvent(t *testing.T) {
	database := testDatabase(t)
	identity := pkg.RandAddress()

	event := randomDepositEvent(identity, time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, database.SaveVaultEvent(t.Context(), &event))

	// Re-indexing the same event is a duplicate key.
	err := database.SaveVaultEvent(t.Context(), &event)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyError(err))
}

func TestGetVaultEventsByIdentity(t *testing.T) {
	database := testDatabase(t)
	identity := pkg.RandAddress()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := range 5 {
		event := randomDepositEvent(identity, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, database.SaveVaultEvent(t.Context(), &event))
	}
	noise := randomDepositEvent(pkg.RandAddress(), base)
	require.NoError(t, database.SaveVaultEvent(t.Context(), &noise))

	events, err := database.GetVaultEventsByIdentity(t.Context(), identity, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].At.After(events[i-1].At))
	}
	for _, event := range events {
		assert.Equal(t, identity, event.Identity)
	}
}

func TestBalanceSnapshots(t *testing.T) {
	database := testDatabase(t)
	identity := pkg.RandAddress()
	asset := pkg.RandAddress()

	_, err := database.GetBalanceSnapshot(t.Context(), identity, asset)
	require.Error(t, err)
	assert.True(t, db.IsNotFoundError(err))

	snapshot := model.BalanceSnapshotDocument{
		Identity:  identity,
		Asset:     asset,
		Amount:    "1000000",
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, database.UpsertBalanceSnapshot(t.Context(), &snapshot))

	stored, err := database.GetBalanceSnapshot(t.Context(), identity, asset)
	require.NoError(t, err)
	assert.Equal(t, "1000000", stored.Amount)

	// Upserting again overwrites rather than duplicates.
	snapshot.Amount = "2000000"
	require.NoError(t, database.UpsertBalanceSnapshot(t.Context(), &snapshot))

	stored, err = database.GetBalanceSnapshot(t.Context(), identity, asset)
	require.NoError(t, err)
	assert.Equal(t, "2000000", stored.Amount)
}
