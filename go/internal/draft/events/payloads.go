package events

import (
	"time"
)

// Event type names published through the outbox relay. The notification
// sender and the standings broadcaster consume these downstream.
const (
	TypeDraftCreated   = "DraftCreated"
	TypeDraftStarted   = "DraftStarted"
	TypeDraftPaused    = "DraftPaused"
	TypeDraftResumed   = "DraftResumed"
	TypeDraftCompleted = "DraftCompleted"
	TypePickMade       = "PickMade"
	TypeOnTheClock     = "OnTheClock"
	TypePickReminder   = "PickReminder"
)

// DraftCreatedPayload is the payload for a DraftCreated event.
type DraftCreatedPayload struct {
	DraftID      string    `json:"draft_id"`
	PoolID       string    `json:"pool_id"`
	TotalRounds  int       `json:"total_rounds"`
	TotalPicks   int       `json:"total_picks"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftPausedPayload is the payload for a DraftPaused event.
type DraftPausedPayload struct {
	DraftID      string    `json:"draft_id"`
	PausedAt     time.Time `json:"paused_at"`
	RemainingSec int       `json:"remaining_sec"`
}

// DraftResumedPayload is the payload for a DraftResumed event.
type DraftResumedPayload struct {
	DraftID   string    `json:"draft_id"`
	ResumedAt time.Time `json:"resumed_at"`
	Deadline  time.Time `json:"deadline"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
// Broadcast to every participant.
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration,omitempty"`
	TotalPicks  int       `json:"total_picks"`
	Forced      bool      `json:"forced"`
}

// PickMadePayload is the payload for a PickMade event. Skipped picks carry
// the reserved resource sentinel and must be excluded from allocation
// totals by downstream scoring.
type PickMadePayload struct {
	PickID        string    `json:"pick_id"`
	ParticipantID string    `json:"participant_id"`
	ResourceID    string    `json:"resource_id"`
	Round         int       `json:"round"`
	PickNumber    int       `json:"pick_number"`
	Skipped       bool      `json:"skipped"`
	Auto          bool      `json:"auto"`
	MadeAt        time.Time `json:"made_at"`
}

// OnTheClockPayload notifies the participant whose turn just began.
type OnTheClockPayload struct {
	ParticipantID string    `json:"participant_id"`
	Round         int       `json:"round"`
	PickNumber    int       `json:"pick_number"`
	Deadline      time.Time `json:"deadline"`
}

// PickReminderPayload nudges the current picker before their deadline.
type PickReminderPayload struct {
	ParticipantID string    `json:"participant_id"`
	Deadline      time.Time `json:"deadline"`
	RemainingSec  int       `json:"remaining_sec"`
}
