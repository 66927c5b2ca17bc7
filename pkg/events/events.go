package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event announces a command the ledger has applied.
// Sequence follows the order in which the store applied the commands, so consumers
// can restore it when deliveries arrive out of order.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Sequence      uint64    `json:"sequence"`
	Command       string    `json:"command"`
	RecordID      string    `json:"record_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEvent(command, recordID, transactionID string) Event {
	return Event{
		ID:            uuid.New(),
		Command:       command,
		RecordID:      recordID,
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher ships events out of the process. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
