package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusPending    DraftStatus = "PENDING"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// Draft represents the snake draft for a single pool.
//
// CurrentPick is the count of committed picks (0-based) and is the sole
// source of truth for whose turn it is; there is no separately stored
// "current picker" field.
type Draft struct {
	ID          uuid.UUID   `json:"id"`
	PoolID      uuid.UUID   `json:"pool_id"`
	Status      DraftStatus `json:"status"`
	DraftOrder  []uuid.UUID `json:"draft_order"`
	CurrentPick int         `json:"current_pick"`
	TotalRounds int         `json:"total_rounds"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ParticipantCount returns the number of participants in the draft order.
func (d *Draft) ParticipantCount() int {
	return len(d.DraftOrder)
}

// TotalPicks returns the total number of pick slots the draft runs for.
func (d *Draft) TotalPicks() int {
	return d.TotalRounds * len(d.DraftOrder)
}

// CurrentRound returns the 1-based round the next pick belongs to.
// Derived from CurrentPick; once all picks are in it stays at the final round.
func (d *Draft) CurrentRound() int {
	n := len(d.DraftOrder)
	if n == 0 {
		return 0
	}
	if d.CurrentPick >= d.TotalPicks() {
		return d.TotalRounds
	}
	return d.CurrentPick/n + 1
}
