package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OutboxRepository defines what the app layer needs from the repository.
type OutboxRepository interface {
	InsertDraftEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App handles outbox business logic.
type App struct {
	repo OutboxRepository
}

// NewApp creates a new outbox App.
func NewApp(repo OutboxRepository) *App {
	return &App{
		repo: repo,
	}
}

// InsertDraftEvent records a draft event for relay to the message bus.
func (a *App) InsertDraftEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if err := a.validateEventPayload(payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", eventType, err)
	}

	if err := a.repo.InsertDraftEvent(ctx, draftID, eventType, payload); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}

	log.Debug().
		Str("draft_id", draftID.String()).
		Str("event_type", eventType).
		Msg("outbox event inserted")
	return nil
}

func (a *App) validateEventPayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload cannot be empty")
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload must be valid JSON")
	}
	return nil
}
