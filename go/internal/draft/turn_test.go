package draft

import (
	"testing"

	"github.com/google/uuid"
	"github.com/poolhouse/pooldraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraft(order []uuid.UUID, rounds int) *models.Draft {
	return &models.Draft{
		ID:          uuid.New(),
		Status:      models.DraftStatusInProgress,
		DraftOrder:  order,
		TotalRounds: rounds,
	}
}

func TestWhoseTurn_SnakeOrderThreeParticipants(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	d := testDraft([]uuid.UUID{a, b, c}, 2)

	// Order [A B C] over two rounds yields A B C C B A.
	want := []uuid.UUID{a, b, c, c, b, a}
	for pick, expected := range want {
		d.CurrentPick = pick
		got, ok := WhoseTurn(d)
		require.True(t, ok, "pick %d", pick)
		assert.Equal(t, expected, got, "pick %d", pick)
	}
}

func TestWhoseTurn_BoundaryContinuity(t *testing.T) {
	order := make([]uuid.UUID, 5)
	for i := range order {
		order[i] = uuid.New()
	}
	d := testDraft(order, 4)

	// The participant closing a round opens the next one.
	n := len(order)
	for round := 1; round < d.TotalRounds; round++ {
		d.CurrentPick = round*n - 1
		last, ok := WhoseTurn(d)
		require.True(t, ok)

		d.CurrentPick = round * n
		first, ok := WhoseTurn(d)
		require.True(t, ok)

		assert.Equal(t, last, first, "round %d boundary", round)
	}
}

func TestWhoseTurn_NobodyWhenNotInProgress(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	for _, status := range []models.DraftStatus{
		models.DraftStatusPending,
		models.DraftStatusPaused,
		models.DraftStatusCompleted,
	} {
		d := testDraft([]uuid.UUID{a, b}, 1)
		d.Status = status
		_, ok := WhoseTurn(d)
		assert.False(t, ok, "status %s", status)
	}
}

func TestWhoseTurn_NobodyWhenAllPicksIn(t *testing.T) {
	d := testDraft([]uuid.UUID{uuid.New(), uuid.New()}, 2)
	d.CurrentPick = d.TotalPicks()

	_, ok := WhoseTurn(d)
	assert.False(t, ok)
}

func TestPickerAt_EveryParticipantPicksOncePerRound(t *testing.T) {
	order := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	d := testDraft(order, 3)
	n := len(order)

	for round := 0; round < d.TotalRounds; round++ {
		seen := make(map[uuid.UUID]bool, n)
		for pos := 0; pos < n; pos++ {
			id, ok := PickerAt(d, round*n+pos)
			require.True(t, ok)
			assert.False(t, seen[id], "round %d repeats a participant", round+1)
			seen[id] = true
		}
	}
}

func TestPickerAt_OutOfRange(t *testing.T) {
	d := testDraft([]uuid.UUID{uuid.New(), uuid.New()}, 1)

	_, ok := PickerAt(d, -1)
	assert.False(t, ok)
	_, ok = PickerAt(d, d.TotalPicks())
	assert.False(t, ok)
}

func TestCurrentRound(t *testing.T) {
	d := testDraft([]uuid.UUID{uuid.New(), uuid.New(), uuid.New()}, 2)

	cases := []struct {
		pick  int
		round int
	}{
		{0, 1},
		{2, 1},
		{3, 2},
		{5, 2},
		{6, 2}, // all picks in, clamped to final round
	}
	for _, tc := range cases {
		d.CurrentPick = tc.pick
		assert.Equal(t, tc.round, d.CurrentRound(), "pick %d", tc.pick)
	}
}
