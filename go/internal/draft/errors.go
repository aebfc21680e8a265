package draft

// DraftError is a typed error for draft validation failures.
type DraftError string

// Error implements the error interface.
func (e DraftError) Error() string {
	return string(e)
}

const (
	// ErrDraftNotFound is returned when no draft exists for the given ID.
	ErrDraftNotFound DraftError = "draft not found"
	// ErrInvalidState is returned when the draft's status does not allow
	// the requested operation, or when starting with fewer than two
	// participants.
	ErrInvalidState DraftError = "draft is not in a valid state for this operation"
	// ErrNotYourTurn is returned when a participant picks out of turn.
	ErrNotYourTurn DraftError = "not this participant's turn"
	// ErrResourceTaken is returned when the resource was already picked
	// earlier in the draft.
	ErrResourceTaken DraftError = "resource already taken"
	// ErrConcurrencyConflict is returned when the pick-counter advance lost
	// a race with a concurrent pick or auto-skip. Callers should re-fetch
	// draft state and retry.
	ErrConcurrencyConflict DraftError = "draft state changed concurrently, retry"
	// ErrValidation wraps malformed-input failures on create and settings
	// updates.
	ErrValidation DraftError = "validation failed"
)
