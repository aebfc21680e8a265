package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceSkipped is the reserved resource ID recorded when a turn is
// skipped instead of picked. It is exempt from the one-resource-per-draft
// uniqueness rule and never counts toward a participant's allocation.
const ResourceSkipped = "skipped"

// DraftPick represents a single committed pick in a draft.
type DraftPick struct {
	ID            uuid.UUID `json:"id"`
	DraftID       uuid.UUID `json:"draft_id"`
	Round         int       `json:"round"`
	PickNumber    int       `json:"pick_number"` // 1-based overall pick number
	ParticipantID uuid.UUID `json:"participant_id"`
	ResourceID    string    `json:"resource_id"`
	Auto          bool      `json:"auto"` // true when recorded by the timeout monitor
	PickedAt      time.Time `json:"picked_at"`
	ElapsedSec    *int      `json:"elapsed_sec,omitempty"`
}

// Skipped reports whether this pick was a skip rather than an allocation.
func (p *DraftPick) Skipped() bool {
	return p.ResourceID == ResourceSkipped
}
