package model

import "time"

// BalanceSnapshotDocument mirrors the in-memory (identity, asset)
// balance after the latest committed mutation.
type BalanceSnapshotDocument struct {
	Identity  string    `bson:"identity"`
	Asset     string    `bson:"asset"`
	Amount    string    `bson:"amount"`
	UpdatedAt time.Time `bson:"updated_at"`
}
