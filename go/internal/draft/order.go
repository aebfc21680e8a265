package draft

import (
	"math/rand"

	"github.com/google/uuid"
)

// GenerateDraftOrder returns a shuffled copy of the participant roster.
// The rand source is injected so tests can pin a seed while production
// uses a time-seeded source. A nil rng returns the roster unshuffled.
func GenerateDraftOrder(participantIDs []uuid.UUID, rng *rand.Rand) []uuid.UUID {
	order := make([]uuid.UUID, len(participantIDs))
	copy(order, participantIDs)
	if rng == nil {
		return order
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
