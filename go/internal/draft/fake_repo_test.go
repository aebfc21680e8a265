package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poolhouse/pooldraft/go/internal/models"
)

// fakeRepo is an in-memory DraftRepository with the same CAS and
// uniqueness semantics as the Postgres store.
type fakeRepo struct {
	mu        sync.Mutex
	drafts    map[uuid.UUID]*models.Draft
	settings  map[uuid.UUID]*models.DraftSettings
	timers    map[uuid.UUID]*models.DraftTimer
	picks     map[uuid.UUID][]models.DraftPick
	resources map[uuid.UUID][]string

	// beforeApply runs once at the top of the next ApplyPick call, used
	// to interleave a competing writer at the CAS boundary.
	beforeApply func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		drafts:    make(map[uuid.UUID]*models.Draft),
		settings:  make(map[uuid.UUID]*models.DraftSettings),
		timers:    make(map[uuid.UUID]*models.DraftTimer),
		picks:     make(map[uuid.UUID][]models.DraftPick),
		resources: make(map[uuid.UUID][]string),
	}
}

func copyDraft(d *models.Draft) *models.Draft {
	out := *d
	out.DraftOrder = append([]uuid.UUID(nil), d.DraftOrder...)
	return &out
}

func (f *fakeRepo) CreateDraft(_ context.Context, draft *models.Draft, settings *models.DraftSettings, resourceIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.drafts[draft.ID] = copyDraft(draft)
	s := *settings
	f.settings[draft.ID] = &s
	f.timers[draft.ID] = &models.DraftTimer{DraftID: draft.ID, UpdatedAt: draft.CreatedAt}
	f.resources[draft.ID] = append([]string(nil), resourceIDs...)
	return nil
}

func (f *fakeRepo) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return copyDraft(d), nil
}

func (f *fakeRepo) GetSettings(_ context.Context, draftID uuid.UUID) (*models.DraftSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.settings[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeRepo) UpdateSettings(_ context.Context, settings *models.DraftSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.settings[settings.DraftID]; !ok {
		return ErrDraftNotFound
	}
	s := *settings
	f.settings[settings.DraftID] = &s
	return nil
}

func (f *fakeRepo) GetTimer(_ context.Context, draftID uuid.UUID) (*models.DraftTimer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.timers[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	out := *t
	return &out, nil
}

func (f *fakeRepo) ListPicks(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.DraftPick(nil), f.picks[draftID]...), nil
}

func (f *fakeRepo) ListAvailableResources(_ context.Context, draftID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	taken := make(map[string]bool)
	for _, p := range f.picks[draftID] {
		taken[p.ResourceID] = true
	}
	var available []string
	for _, id := range f.resources[draftID] {
		if !taken[id] {
			available = append(available, id)
		}
	}
	return available, nil
}

func (f *fakeRepo) StartDraft(_ context.Context, id uuid.UUID, startedAt, deadline time.Time) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.Status != models.DraftStatusPending {
		return nil, ErrConcurrencyConflict
	}
	d.Status = models.DraftStatusInProgress
	d.StartedAt = &startedAt
	d.UpdatedAt = startedAt
	dl := deadline
	f.timers[id] = &models.DraftTimer{DraftID: id, Deadline: &dl, UpdatedAt: startedAt}
	return copyDraft(d), nil
}

func (f *fakeRepo) PauseDraft(_ context.Context, id uuid.UUID, pausedAt time.Time, remainingSec int) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.Status != models.DraftStatusInProgress {
		return nil, ErrConcurrencyConflict
	}
	d.Status = models.DraftStatusPaused
	d.UpdatedAt = pausedAt
	pa := pausedAt
	rem := remainingSec
	f.timers[id] = &models.DraftTimer{DraftID: id, PausedAt: &pa, RemainingSec: &rem, UpdatedAt: pausedAt}
	return copyDraft(d), nil
}

func (f *fakeRepo) ResumeDraft(_ context.Context, id uuid.UUID, resumedAt, deadline time.Time) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.Status != models.DraftStatusPaused {
		return nil, ErrConcurrencyConflict
	}
	d.Status = models.DraftStatusInProgress
	d.UpdatedAt = resumedAt
	dl := deadline
	f.timers[id] = &models.DraftTimer{DraftID: id, Deadline: &dl, UpdatedAt: resumedAt}
	return copyDraft(d), nil
}

func (f *fakeRepo) CompleteDraft(_ context.Context, id uuid.UUID, completedAt time.Time) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.Status != models.DraftStatusInProgress && d.Status != models.DraftStatusPaused {
		return nil, ErrConcurrencyConflict
	}
	d.Status = models.DraftStatusCompleted
	d.CompletedAt = &completedAt
	d.UpdatedAt = completedAt
	f.timers[id] = &models.DraftTimer{DraftID: id, UpdatedAt: completedAt}
	return copyDraft(d), nil
}

func (f *fakeRepo) ApplyPick(_ context.Context, req ApplyPickRequest) (*models.DraftPick, error) {
	if f.beforeApply != nil {
		hook := f.beforeApply
		f.beforeApply = nil
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[req.Pick.DraftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if d.Status != models.DraftStatusInProgress || d.CurrentPick != req.ExpectedPick {
		return nil, ErrConcurrencyConflict
	}
	if req.Pick.ResourceID != models.ResourceSkipped {
		for _, p := range f.picks[d.ID] {
			if p.ResourceID == req.Pick.ResourceID {
				return nil, ErrResourceTaken
			}
		}
	}

	d.CurrentPick++
	d.UpdatedAt = req.Pick.PickedAt
	if req.Complete {
		d.Status = models.DraftStatusCompleted
		d.CompletedAt = req.CompletedAt
		f.timers[d.ID] = &models.DraftTimer{DraftID: d.ID, UpdatedAt: req.Pick.PickedAt}
	} else {
		f.timers[d.ID] = &models.DraftTimer{DraftID: d.ID, Deadline: req.NextDeadline, UpdatedAt: req.Pick.PickedAt}
	}

	pick := req.Pick
	f.picks[d.ID] = append(f.picks[d.ID], pick)
	return &pick, nil
}

func (f *fakeRepo) MarkReminderSent(_ context.Context, draftID uuid.UUID, deadline time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.timers[draftID]
	if !ok {
		return false, ErrDraftNotFound
	}
	if t.Deadline == nil || !t.Deadline.Equal(deadline) {
		return false, nil
	}
	if t.ReminderSentFor != nil && t.ReminderSentFor.Equal(deadline) {
		return false, nil
	}
	dl := deadline
	t.ReminderSentFor = &dl
	return true, nil
}

// fakeOutbox records emitted events in order.
type fakeOutbox struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	DraftID   uuid.UUID
	EventType string
	Payload   []byte
}

func (f *fakeOutbox) InsertDraftEvent(_ context.Context, draftID uuid.UUID, eventType string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fakeEvent{DraftID: draftID, EventType: eventType, Payload: payload})
	return nil
}

func (f *fakeOutbox) typesFor(draftID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, e := range f.events {
		if e.DraftID == draftID {
			types = append(types, e.EventType)
		}
	}
	return types
}
