package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftTimer holds the deadline bookkeeping for a draft (1:1 with Draft).
//
// Deadline is set whenever the draft is in progress and null otherwise.
// PausedAt and RemainingSec are only populated while the draft is paused;
// ReminderSentFor records the deadline value the last reminder was sent
// for, so a reminder fires at most once per deadline.
type DraftTimer struct {
	DraftID         uuid.UUID  `json:"draft_id"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	ReminderSentFor *time.Time `json:"reminder_sent_for,omitempty"`
	PausedAt        *time.Time `json:"paused_at,omitempty"`
	RemainingSec    *int       `json:"remaining_sec,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
