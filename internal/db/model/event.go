package model

import "time"

// VaultEventDocument is the indexed form of a vault event. Amounts are
// stored as decimal strings to survive 256-bit magnitudes.
type VaultEventDocument struct {
	ID         string    `bson:"_id"`
	Type       string    `bson:"type"`
	At         time.Time `bson:"at"`
	Identity   string    `bson:"identity,omitempty"`
	Asset      string    `bson:"asset,omitempty"`
	Symbol     string    `bson:"symbol,omitempty"`
	Amount     string    `bson:"amount,omitempty"`
	Value      string    `bson:"value,omitempty"`
	Cap        string    `bson:"cap,omitempty"`
	Limit      string    `bson:"limit,omitempty"`
	Capability string    `bson:"capability,omitempty"`
	Source     string    `bson:"source,omitempty"`
}
