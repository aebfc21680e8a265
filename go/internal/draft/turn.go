package draft

import (
	"github.com/google/uuid"
	"github.com/poolhouse/pooldraft/go/internal/models"
)

// WhoseTurn returns the participant on the clock, derived purely from the
// draft's committed pick count. The second return is false when nobody is
// on the clock (draft not in progress, or all picks are in).
//
// Odd rounds walk the draft order forward, even rounds walk it in reverse,
// so the participant picking last in round k picks first in round k+1.
func WhoseTurn(d *models.Draft) (uuid.UUID, bool) {
	n := d.ParticipantCount()
	if n == 0 || d.Status != models.DraftStatusInProgress || d.CurrentPick >= d.TotalPicks() {
		return uuid.Nil, false
	}
	return d.DraftOrder[slotIndex(d.CurrentPick, n)], true
}

// PickerAt returns the participant that owns the given 0-based overall
// pick slot, ignoring draft status. Used when projecting future turns.
func PickerAt(d *models.Draft, pick int) (uuid.UUID, bool) {
	n := d.ParticipantCount()
	if n == 0 || pick < 0 || pick >= d.TotalPicks() {
		return uuid.Nil, false
	}
	return d.DraftOrder[slotIndex(pick, n)], true
}

// slotIndex maps a 0-based overall pick count to an index into the draft
// order, reversing direction every round.
func slotIndex(pick, n int) int {
	round := pick / n
	pos := pick % n
	if round%2 == 1 {
		return n - 1 - pos
	}
	return pos
}
