package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/poolhouse/pooldraft/go/internal/draft/events"
	"github.com/poolhouse/pooldraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// DraftRepository defines what the app layer needs from the record store.
type DraftRepository interface {
	CreateDraft(ctx context.Context, draft *models.Draft, settings *models.DraftSettings, resourceIDs []string) error
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	GetSettings(ctx context.Context, draftID uuid.UUID) (*models.DraftSettings, error)
	UpdateSettings(ctx context.Context, settings *models.DraftSettings) error
	GetTimer(ctx context.Context, draftID uuid.UUID) (*models.DraftTimer, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	ListAvailableResources(ctx context.Context, draftID uuid.UUID) ([]string, error)
	StartDraft(ctx context.Context, id uuid.UUID, startedAt, deadline time.Time) (*models.Draft, error)
	PauseDraft(ctx context.Context, id uuid.UUID, pausedAt time.Time, remainingSec int) (*models.Draft, error)
	ResumeDraft(ctx context.Context, id uuid.UUID, resumedAt, deadline time.Time) (*models.Draft, error)
	CompleteDraft(ctx context.Context, id uuid.UUID, completedAt time.Time) (*models.Draft, error)
	ApplyPick(ctx context.Context, req ApplyPickRequest) (*models.DraftPick, error)
	MarkReminderSent(ctx context.Context, draftID uuid.UUID, deadline time.Time) (bool, error)
}

// OutboxApp defines what the app layer needs from the outbox.
type OutboxApp interface {
	InsertDraftEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App coordinates the draft lifecycle: turn order, pick validation and
// application, pause/resume deadline bookkeeping, and timeout handling.
type App struct {
	repo   DraftRepository
	outbox OutboxApp
	clock  clockwork.Clock
	rng    *rand.Rand
}

// NewApp creates a new draft App. The clock and rand source are injected
// so tests can pin time and shuffle order.
func NewApp(repo DraftRepository, outbox OutboxApp, clock clockwork.Clock, rng *rand.Rand) *App {
	return &App{
		repo:   repo,
		outbox: outbox,
		clock:  clock,
		rng:    rng,
	}
}

// CreateDraftRequest carries everything a pool supplies at draft creation.
type CreateDraftRequest struct {
	PoolID         uuid.UUID   `json:"pool_id"`
	TotalRounds    int         `json:"total_rounds"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	ResourceIDs    []string    `json:"resource_ids"`
	CreatedBy      uuid.UUID   `json:"created_by"`
}

// Status is the read-only snapshot returned by GetStatus.
type Status struct {
	Draft              *models.Draft         `json:"draft"`
	Settings           *models.DraftSettings `json:"settings"`
	CurrentPicker      *uuid.UUID            `json:"current_picker,omitempty"`
	RemainingSec       *int                  `json:"remaining_sec,omitempty"`
	Picks              []models.DraftPick    `json:"picks"`
	AvailableResources []string              `json:"available_resources"`
}

// TimeoutResult reports what a timeout check did.
type TimeoutResult struct {
	Skipped  bool `json:"skipped"`
	Reminded bool `json:"reminded"`
}

// CreateDraft validates the roster and catalog, shuffles the draft order,
// and persists the draft with default settings and a disarmed timer.
// A single-participant draft can be created (the pool may still be
// filling) but cannot be started.
func (a *App) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error) {
	if err := a.validateCreateDraftRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	now := a.clock.Now().UTC()
	draft := &models.Draft{
		ID:          uuid.New(),
		PoolID:      req.PoolID,
		Status:      models.DraftStatusPending,
		DraftOrder:  GenerateDraftOrder(req.ParticipantIDs, a.rng),
		TotalRounds: req.TotalRounds,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	settings := models.DefaultDraftSettings(draft.ID)

	if err := a.repo.CreateDraft(ctx, draft, &settings, req.ResourceIDs); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	a.emitEvent(ctx, draft.ID, events.TypeDraftCreated, events.DraftCreatedPayload{
		DraftID:      draft.ID.String(),
		PoolID:       draft.PoolID.String(),
		TotalRounds:  draft.TotalRounds,
		TotalPicks:   draft.TotalPicks(),
		Participants: draft.ParticipantCount(),
		CreatedAt:    now,
	})

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("pool_id", draft.PoolID.String()).
		Int("participants", draft.ParticipantCount()).
		Int("total_picks", draft.TotalPicks()).
		Msg("created draft")
	return draft, nil
}

// StartDraft moves a pending draft to in progress and puts the first
// picker on the clock. Requires at least two participants; snake order is
// meaningless with one.
func (a *App) StartDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPending {
		return nil, fmt.Errorf("start draft %s: %w", id, ErrInvalidState)
	}
	if draft.ParticipantCount() < 2 {
		return nil, fmt.Errorf("start draft %s: need at least 2 participants: %w", id, ErrInvalidState)
	}

	settings, err := a.repo.GetSettings(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	deadline := now.Add(time.Duration(settings.TimePerPickSec) * time.Second)
	started, err := a.repo.StartDraft(ctx, id, now, deadline)
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, id, events.TypeDraftStarted, events.DraftStartedPayload{
		DraftID:     id.String(),
		StartedAt:   now,
		TotalRounds: started.TotalRounds,
		TotalPicks:  started.TotalPicks(),
	})
	a.emitOnTheClock(ctx, started, deadline)

	log.Info().Str("draft_id", id.String()).Time("deadline", deadline).Msg("draft started")
	return started, nil
}

// PauseDraft parks an in-progress draft, capturing how much of the
// current pick allotment is left.
func (a *App) PauseDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, fmt.Errorf("pause draft %s: %w", id, ErrInvalidState)
	}

	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := a.repo.GetSettings(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	remaining := settings.TimePerPickSec
	if timer.Deadline != nil {
		remaining = int(timer.Deadline.Sub(now) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
	}

	paused, err := a.repo.PauseDraft(ctx, id, now, remaining)
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, id, events.TypeDraftPaused, events.DraftPausedPayload{
		DraftID:      id.String(),
		PausedAt:     now,
		RemainingSec: remaining,
	})

	log.Info().Str("draft_id", id.String()).Int("remaining_sec", remaining).Msg("draft paused")
	return paused, nil
}

// ResumeDraft puts a paused draft back in progress. The new deadline is
// exactly the snapshotted remaining time ahead of now, not a fresh
// allotment; a missing snapshot falls back to the full pick time.
func (a *App) ResumeDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPaused {
		return nil, fmt.Errorf("resume draft %s: %w", id, ErrInvalidState)
	}

	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := a.repo.GetSettings(ctx, id)
	if err != nil {
		return nil, err
	}

	remaining := settings.TimePerPickSec
	if timer.RemainingSec != nil {
		remaining = *timer.RemainingSec
	}

	now := a.clock.Now().UTC()
	deadline := now.Add(time.Duration(remaining) * time.Second)
	resumed, err := a.repo.ResumeDraft(ctx, id, now, deadline)
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, id, events.TypeDraftResumed, events.DraftResumedPayload{
		DraftID:   id.String(),
		ResumedAt: now,
		Deadline:  deadline,
	})
	a.emitOnTheClock(ctx, resumed, deadline)

	log.Info().Str("draft_id", id.String()).Time("deadline", deadline).Msg("draft resumed")
	return resumed, nil
}

// CompleteDraft force-completes a draft before all picks are in. Natural
// completion happens inside the pick path when the last slot fills.
func (a *App) CompleteDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress && draft.Status != models.DraftStatusPaused {
		return nil, fmt.Errorf("complete draft %s: %w", id, ErrInvalidState)
	}

	now := a.clock.Now().UTC()
	completed, err := a.repo.CompleteDraft(ctx, id, now)
	if err != nil {
		return nil, err
	}

	a.emitDraftCompleted(ctx, completed, now, true)
	log.Info().Str("draft_id", id.String()).Msg("draft force-completed")
	return completed, nil
}

// MakePick validates and applies one pick for the participant on the
// clock. Check order: draft exists, draft in progress, actor's turn,
// resource still available.
func (a *App) MakePick(ctx context.Context, draftID, participantID uuid.UUID, resourceID string) (*models.DraftPick, error) {
	if resourceID == "" || resourceID == models.ResourceSkipped {
		return nil, fmt.Errorf("%w: resource_id %q is reserved or empty", ErrValidation, resourceID)
	}

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, fmt.Errorf("pick in draft %s: %w", draftID, ErrInvalidState)
	}

	current, ok := WhoseTurn(draft)
	if !ok {
		return nil, fmt.Errorf("pick in draft %s: no turn open: %w", draftID, ErrInvalidState)
	}
	if current != participantID {
		return nil, fmt.Errorf("pick in draft %s by %s: %w", draftID, participantID, ErrNotYourTurn)
	}

	if err := a.checkResourceAvailable(ctx, draftID, resourceID); err != nil {
		return nil, err
	}

	return a.applyPick(ctx, draft, participantID, resourceID, false)
}

// ForceSkip is the administrator path: it skips whoever is on the clock
// without the actor check, but keeps every turn and state rule.
func (a *App) ForceSkip(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, fmt.Errorf("skip in draft %s: %w", draftID, ErrInvalidState)
	}

	current, ok := WhoseTurn(draft)
	if !ok {
		return nil, fmt.Errorf("skip in draft %s: no turn open: %w", draftID, ErrInvalidState)
	}

	return a.applyPick(ctx, draft, current, models.ResourceSkipped, false)
}

// CheckAndHandleTimeout inspects the current deadline and either
// auto-skips an overdue turn, sends a reminder, or does nothing. Invoked
// by the external sweeper; safe to call arbitrarily often because a stale
// deadline is moot once current_pick advances.
func (a *App) CheckAndHandleTimeout(ctx context.Context, draftID uuid.UUID) (*TimeoutResult, error) {
	result := &TimeoutResult{}

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return result, nil
	}

	timer, err := a.repo.GetTimer(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if timer.Deadline == nil {
		return result, nil
	}
	settings, err := a.repo.GetSettings(ctx, draftID)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	remaining := timer.Deadline.Sub(now)

	if settings.AutoSkipEnabled && remaining <= -time.Duration(settings.AutoSkipGraceSec)*time.Second {
		current, ok := WhoseTurn(draft)
		if !ok {
			return result, nil
		}
		_, err := a.applyPick(ctx, draft, current, models.ResourceSkipped, true)
		if err != nil {
			// A concurrent pick beat the skip; the deadline this check
			// fired for no longer exists.
			if errors.Is(err, ErrConcurrencyConflict) {
				log.Debug().Str("draft_id", draftID.String()).Msg("timeout check lost race, turn already advanced")
				return result, nil
			}
			return nil, err
		}
		result.Skipped = true
		log.Info().
			Str("draft_id", draftID.String()).
			Str("participant_id", current.String()).
			Msg("auto-skipped overdue turn")
		return result, nil
	}

	if settings.ReminderLeadSec > 0 && remaining <= time.Duration(settings.ReminderLeadSec)*time.Second {
		sent, err := a.repo.MarkReminderSent(ctx, draftID, *timer.Deadline)
		if err != nil {
			return nil, err
		}
		if sent {
			current, ok := WhoseTurn(draft)
			if ok {
				remainingSec := int(remaining / time.Second)
				if remainingSec < 0 {
					remainingSec = 0
				}
				a.emitEvent(ctx, draftID, events.TypePickReminder, events.PickReminderPayload{
					ParticipantID: current.String(),
					Deadline:      *timer.Deadline,
					RemainingSec:  remainingSec,
				})
				result.Reminded = true
				log.Info().
					Str("draft_id", draftID.String()).
					Str("participant_id", current.String()).
					Int("remaining_sec", remainingSec).
					Msg("sent pick reminder")
			}
		}
	}

	return result, nil
}

// GetStatus assembles the read-only draft snapshot.
func (a *App) GetStatus(ctx context.Context, draftID uuid.UUID) (*Status, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	settings, err := a.repo.GetSettings(ctx, draftID)
	if err != nil {
		return nil, err
	}
	picks, err := a.repo.ListPicks(ctx, draftID)
	if err != nil {
		return nil, err
	}
	available, err := a.repo.ListAvailableResources(ctx, draftID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Draft:              draft,
		Settings:           settings,
		Picks:              picks,
		AvailableResources: available,
	}

	if current, ok := WhoseTurn(draft); ok {
		status.CurrentPicker = &current
		timer, err := a.repo.GetTimer(ctx, draftID)
		if err != nil {
			return nil, err
		}
		if timer.Deadline != nil {
			remaining := int(timer.Deadline.Sub(a.clock.Now()) / time.Second)
			if remaining < 0 {
				remaining = 0
			}
			status.RemainingSec = &remaining
		}
	}
	return status, nil
}

// ListPicks returns the committed pick history for a draft.
func (a *App) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	if _, err := a.repo.GetDraft(ctx, draftID); err != nil {
		return nil, err
	}
	return a.repo.ListPicks(ctx, draftID)
}

// UpdateSettingsRequest carries optional settings changes; nil fields are
// left untouched. Pick-time changes apply from the next deadline reset.
type UpdateSettingsRequest struct {
	TimePerPickSec   *int  `json:"time_per_pick_sec,omitempty"`
	ReminderLeadSec  *int  `json:"reminder_lead_sec,omitempty"`
	AutoSkipEnabled  *bool `json:"auto_skip_enabled,omitempty"`
	AutoSkipGraceSec *int  `json:"auto_skip_grace_sec,omitempty"`
	RoundBreakSec    *int  `json:"round_break_sec,omitempty"`
}

// UpdateSettings edits the timing configuration of a non-completed draft.
func (a *App) UpdateSettings(ctx context.Context, draftID uuid.UUID, req UpdateSettingsRequest) (*models.DraftSettings, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status == models.DraftStatusCompleted {
		return nil, fmt.Errorf("update settings of draft %s: %w", draftID, ErrInvalidState)
	}

	settings, err := a.repo.GetSettings(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if req.TimePerPickSec != nil {
		settings.TimePerPickSec = *req.TimePerPickSec
	}
	if req.ReminderLeadSec != nil {
		settings.ReminderLeadSec = *req.ReminderLeadSec
	}
	if req.AutoSkipEnabled != nil {
		settings.AutoSkipEnabled = *req.AutoSkipEnabled
	}
	if req.AutoSkipGraceSec != nil {
		settings.AutoSkipGraceSec = *req.AutoSkipGraceSec
	}
	if req.RoundBreakSec != nil {
		settings.RoundBreakSec = *req.RoundBreakSec
	}
	if err := a.validateSettings(settings); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := a.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	log.Info().Str("draft_id", draftID.String()).Msg("updated draft settings")
	return settings, nil
}

// applyPick commits the pick through the store's CAS path and handles the
// resulting state transition: rearm the deadline for the next picker, or
// complete the draft when the last slot fills.
func (a *App) applyPick(ctx context.Context, draft *models.Draft, participantID uuid.UUID, resourceID string, auto bool) (*models.DraftPick, error) {
	settings, err := a.repo.GetSettings(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	timer, err := a.repo.GetTimer(ctx, draft.ID)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	pick := models.DraftPick{
		ID:            uuid.New(),
		DraftID:       draft.ID,
		Round:         draft.CurrentRound(),
		PickNumber:    draft.CurrentPick + 1,
		ParticipantID: participantID,
		ResourceID:    resourceID,
		Auto:          auto,
		PickedAt:      now,
	}
	if timer.Deadline != nil {
		elapsed := settings.TimePerPickSec - int(timer.Deadline.Sub(now)/time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		pick.ElapsedSec = &elapsed
	}

	req := ApplyPickRequest{
		Pick:         pick,
		ExpectedPick: draft.CurrentPick,
	}
	newCount := draft.CurrentPick + 1
	if newCount >= draft.TotalPicks() {
		req.Complete = true
		req.CompletedAt = &now
	} else {
		allotment := time.Duration(settings.TimePerPickSec) * time.Second
		// A pick that closes a round pushes the next deadline out by the
		// configured inter-round break.
		if settings.RoundBreakSec > 0 && newCount%draft.ParticipantCount() == 0 {
			allotment += time.Duration(settings.RoundBreakSec) * time.Second
		}
		deadline := now.Add(allotment)
		req.NextDeadline = &deadline
	}

	applied, err := a.repo.ApplyPick(ctx, req)
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draft.ID, events.TypePickMade, events.PickMadePayload{
		PickID:        applied.ID.String(),
		ParticipantID: applied.ParticipantID.String(),
		ResourceID:    applied.ResourceID,
		Round:         applied.Round,
		PickNumber:    applied.PickNumber,
		Skipped:       applied.Skipped(),
		Auto:          applied.Auto,
		MadeAt:        applied.PickedAt,
	})

	advanced := *draft
	advanced.CurrentPick = newCount
	if req.Complete {
		advanced.Status = models.DraftStatusCompleted
		a.emitDraftCompleted(ctx, &advanced, now, false)
	} else if req.NextDeadline != nil {
		a.emitOnTheClock(ctx, &advanced, *req.NextDeadline)
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("participant_id", participantID.String()).
		Str("resource_id", resourceID).
		Int("pick_number", applied.PickNumber).
		Bool("skipped", applied.Skipped()).
		Msg("pick applied")
	return applied, nil
}

// checkResourceAvailable rejects resources outside the catalog or already
// claimed. The partial unique index in the store remains the race-proof
// backstop; this gives the caller the right error up front.
func (a *App) checkResourceAvailable(ctx context.Context, draftID uuid.UUID, resourceID string) error {
	available, err := a.repo.ListAvailableResources(ctx, draftID)
	if err != nil {
		return err
	}
	for _, id := range available {
		if id == resourceID {
			return nil
		}
	}

	picks, err := a.repo.ListPicks(ctx, draftID)
	if err != nil {
		return err
	}
	for _, p := range picks {
		if p.ResourceID == resourceID {
			return fmt.Errorf("resource %q in draft %s: %w", resourceID, draftID, ErrResourceTaken)
		}
	}
	return fmt.Errorf("%w: resource %q is not in the catalog for draft %s", ErrValidation, resourceID, draftID)
}

func (a *App) validateCreateDraftRequest(req CreateDraftRequest) error {
	if req.PoolID == uuid.Nil {
		return fmt.Errorf("pool_id is required")
	}
	if req.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}
	if req.TotalRounds <= 0 {
		return fmt.Errorf("total_rounds must be greater than 0")
	}
	if len(req.ParticipantIDs) == 0 {
		return fmt.Errorf("at least one participant is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if id == uuid.Nil {
			return fmt.Errorf("participant ids must be non-nil")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate participant %s", id)
		}
		seen[id] = struct{}{}
	}
	total := req.TotalRounds * len(req.ParticipantIDs)
	if len(req.ResourceIDs) < total {
		return fmt.Errorf("resource catalog has %d entries, need at least %d", len(req.ResourceIDs), total)
	}
	seenRes := make(map[string]struct{}, len(req.ResourceIDs))
	for _, id := range req.ResourceIDs {
		if id == "" || id == models.ResourceSkipped {
			return fmt.Errorf("resource id %q is reserved or empty", id)
		}
		if _, dup := seenRes[id]; dup {
			return fmt.Errorf("duplicate resource %q", id)
		}
		seenRes[id] = struct{}{}
	}
	return nil
}

func (a *App) validateSettings(s *models.DraftSettings) error {
	if s.TimePerPickSec <= 0 {
		return fmt.Errorf("time_per_pick_sec must be greater than 0")
	}
	if s.ReminderLeadSec < 0 {
		return fmt.Errorf("reminder_lead_sec cannot be negative")
	}
	if s.AutoSkipGraceSec < 0 {
		return fmt.Errorf("auto_skip_grace_sec cannot be negative")
	}
	if s.RoundBreakSec < 0 {
		return fmt.Errorf("round_break_sec cannot be negative")
	}
	return nil
}

// Event emission helpers. Emission is best-effort: a failed outbox insert
// is logged, never propagated, so a committed pick can't be rolled back by
// notification plumbing.

func (a *App) emitEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := a.outbox.InsertDraftEvent(ctx, draftID, eventType, data); err != nil {
		log.Error().Err(err).
			Str("draft_id", draftID.String()).
			Str("event_type", eventType).
			Msg("failed to insert outbox event")
	}
}

func (a *App) emitOnTheClock(ctx context.Context, draft *models.Draft, deadline time.Time) {
	current, ok := WhoseTurn(draft)
	if !ok {
		return
	}
	a.emitEvent(ctx, draft.ID, events.TypeOnTheClock, events.OnTheClockPayload{
		ParticipantID: current.String(),
		Round:         draft.CurrentRound(),
		PickNumber:    draft.CurrentPick + 1,
		Deadline:      deadline,
	})
}

func (a *App) emitDraftCompleted(ctx context.Context, draft *models.Draft, completedAt time.Time, forced bool) {
	var duration string
	if draft.StartedAt != nil {
		duration = completedAt.Sub(*draft.StartedAt).String()
	}
	a.emitEvent(ctx, draft.ID, events.TypeDraftCompleted, events.DraftCompletedPayload{
		DraftID:     draft.ID.String(),
		CompletedAt: completedAt,
		Duration:    duration,
		TotalPicks:  draft.TotalPicks(),
		Forced:      forced,
	})
}
