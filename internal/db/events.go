package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-io/vault-ledger/internal/db/model"
)

func (db *Database) SaveVaultEvent(ctx context.Context, event *model.VaultEventDocument) error {
	_, err := db.collection(model.VaultEventsCollection).InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateKeyError{
				Key:     event.ID,
				Message: "vault event already indexed",
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetVaultEventsByIdentity(
	ctx context.Context, identity string, limit int64,
) ([]model.VaultEventDocument, error) {
	filter := bson.M{"identity": identity}
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.VaultEventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find vault events for %s: %w", identity, err)
	}
	defer cursor.Close(ctx)

	var events []model.VaultEventDocument
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *Database) UpsertBalanceSnapshot(ctx context.Context, snapshot *model.BalanceSnapshotDocument) error {
	filter := bson.M{
		"identity": snapshot.Identity,
		"asset":    snapshot.Asset,
	}
	update := bson.M{"$set": snapshot}

	_, err := db.collection(model.BalanceSnapshotsCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) GetBalanceSnapshot(ctx context.Context, identity, asset string) (*model.BalanceSnapshotDocument, error) {
	filter := bson.M{
		"identity": identity,
		"asset":    asset,
	}
	res := db.collection(model.BalanceSnapshotsCollection).FindOne(ctx, filter)

	var doc model.BalanceSnapshotDocument
	err := res.Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     identity + "/" + asset,
				Message: "balance snapshot not found",
			}
		}
		return nil, err
	}

	return &doc, nil
}
