package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one row of the draft event outbox. Rows are written in the
// same database as draft state and relayed to the message bus by the
// worker, so a committed pick never loses its notification.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// EventPublisher delivers relayed outbox events to their destination.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
