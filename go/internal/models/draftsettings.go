package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftSettings holds the per-pool timing configuration for a draft.
type DraftSettings struct {
	DraftID          uuid.UUID `json:"draft_id"`
	TimePerPickSec   int       `json:"time_per_pick_sec"`
	ReminderLeadSec  int       `json:"reminder_lead_sec"`
	AutoSkipEnabled  bool      `json:"auto_skip_enabled"`
	AutoSkipGraceSec int       `json:"auto_skip_grace_sec"`
	RoundBreakSec    int       `json:"round_break_sec"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultDraftSettings returns the settings a draft is created with.
// Turns span hours or days in a friends pool, so the defaults are generous:
// 24h per pick with a reminder an hour before the deadline.
func DefaultDraftSettings(draftID uuid.UUID) DraftSettings {
	return DraftSettings{
		DraftID:         draftID,
		TimePerPickSec:  86400,
		ReminderLeadSec: 3600,
		AutoSkipEnabled: true,
	}
}
