package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/poolhouse/pooldraft/go/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu   sync.Mutex
	wake *time.Time
	due  []uuid.UUID
}

func (s *stubStore) FetchNextWake(context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wake, nil
}

func (s *stubStore) FetchDraftsDue(context.Context, time.Time, int32) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := s.due
	s.due = nil
	return due, nil
}

type stubChecker struct {
	called chan uuid.UUID
}

func (c *stubChecker) CheckAndHandleTimeout(_ context.Context, draftID uuid.UUID) (*draft.TimeoutResult, error) {
	c.called <- draftID
	return &draft.TimeoutResult{Skipped: true}, nil
}

func TestSweeper_DispatchesDueDrafts(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	draftID := uuid.New()
	past := now.Add(-time.Second)
	store := &stubStore{wake: &past, due: []uuid.UUID{draftID}}
	checker := &stubChecker{called: make(chan uuid.UUID, 10)}

	sw := New(store, checker, clock, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	select {
	case got := <-checker.called:
		assert.Equal(t, draftID, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout check was never invoked")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestSweeper_WakeInterruptsIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	store := &stubStore{}
	checker := &stubChecker{called: make(chan uuid.UUID, 10)}
	sw := New(store, checker, clock, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	// Arm a due draft while the loop idles, then nudge it.
	draftID := uuid.New()
	past := now.Add(-time.Second)
	store.mu.Lock()
	store.wake = &past
	store.due = []uuid.UUID{draftID}
	store.mu.Unlock()
	sw.Wake()

	select {
	case got := <-checker.called:
		assert.Equal(t, draftID, got)
	case <-time.After(5 * time.Second):
		t.Fatal("wake did not trigger dispatch")
	}

	cancel()
	require.NoError(t, <-done)
}
