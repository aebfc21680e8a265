package draft

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDraftOrder_Permutation(t *testing.T) {
	roster := make([]uuid.UUID, 8)
	for i := range roster {
		roster[i] = uuid.New()
	}

	order := GenerateDraftOrder(roster, rand.New(rand.NewSource(42)))

	require.Len(t, order, len(roster))
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		assert.False(t, seen[id], "duplicate participant in order")
		seen[id] = true
	}
	for _, id := range roster {
		assert.True(t, seen[id], "participant missing from order")
	}
}

func TestGenerateDraftOrder_DeterministicForSeed(t *testing.T) {
	roster := make([]uuid.UUID, 6)
	for i := range roster {
		roster[i] = uuid.New()
	}

	first := GenerateDraftOrder(roster, rand.New(rand.NewSource(7)))
	second := GenerateDraftOrder(roster, rand.New(rand.NewSource(7)))

	assert.Equal(t, first, second)
}

func TestGenerateDraftOrder_DoesNotMutateInput(t *testing.T) {
	roster := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	original := make([]uuid.UUID, len(roster))
	copy(original, roster)

	GenerateDraftOrder(roster, rand.New(rand.NewSource(1)))

	assert.Equal(t, original, roster)
}

func TestGenerateDraftOrder_NilRNG(t *testing.T) {
	roster := []uuid.UUID{uuid.New(), uuid.New()}

	order := GenerateDraftOrder(roster, nil)

	assert.Equal(t, roster, order)
}
