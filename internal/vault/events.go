package vault

import (
	"context"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
)

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventDepositMade          EventType = "vault.deposit_made"
	EventWithdrawalMade       EventType = "vault.withdrawal_made"
	EventAssetAdded           EventType = "vault.asset_added"
	EventGlobalCapUpdated     EventType = "vault.global_cap_updated"
	EventWithdrawLimitUpdated EventType = "vault.withdraw_limit_updated"
	EventPriceSourceUpdated   EventType = "vault.price_source_updated"
	EventRoleGranted          EventType = "vault.role_granted"
)

// Event is a notification emitted by the vault after an operation commits.
// Only the fields relevant to the event type are populated.
type Event struct {
	ID   string
	Type EventType
	At   time.Time

	Identity   string
	Asset      string
	Symbol     string
	Amount     math.Int
	Value      math.Int
	Balance    math.Int
	Total      math.Int
	Cap        math.Int
	Limit      math.Int
	Capability Capability
	Source     string
}

// EventSink receives vault events. Implementations must not block the
// ledger; a failed publish is reported back and logged by the vault but
// never aborts the operation that produced the event.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(eventType EventType, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: eventType,
		At:   at,
	}
}
