package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-io/vault-ledger/internal/config"
)

const (
	VaultEventsCollection      = "vault_events"
	BalanceSnapshotsCollection = "balance_snapshots"
)

var collections = map[string][]mongo.IndexModel{
	VaultEventsCollection: {
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "identity", Value: 1}, {Key: "at", Value: -1}}},
	},
	BalanceSnapshotsCollection: {
		{
			Keys:    bson.D{{Key: "identity", Value: 1}, {Key: "asset", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	},
}

// Setup creates the collections and indexes used by the event store.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps = clientOps.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on collection %s: %w", name, err)
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	err := database.CreateCollection(ctx, name)
	if err == nil {
		return nil
	}
	// Collections survive restarts.
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
		return nil
	}
	return fmt.Errorf("failed to create collection %s: %w", name, err)
}
