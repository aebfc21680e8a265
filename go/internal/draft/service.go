package draft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/poolhouse/pooldraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// DraftApp defines the operations the HTTP layer exposes.
type DraftApp interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error)
	StartDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	PauseDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ResumeDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	CompleteDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	MakePick(ctx context.Context, draftID, participantID uuid.UUID, resourceID string) (*models.DraftPick, error)
	ForceSkip(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error)
	CheckAndHandleTimeout(ctx context.Context, draftID uuid.UUID) (*TimeoutResult, error)
	GetStatus(ctx context.Context, draftID uuid.UUID) (*Status, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	UpdateSettings(ctx context.Context, draftID uuid.UUID, req UpdateSettingsRequest) (*models.DraftSettings, error)
}

// Service is the HTTP transport for draft operations.
type Service struct {
	app DraftApp
}

func NewService(app DraftApp) *Service {
	return &Service{app: app}
}

// Routes mounts the draft API onto a chi router.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handleCreate)
	r.Route("/{draftID}", func(r chi.Router) {
		r.Get("/", s.handleGetStatus)
		r.Get("/picks", s.handleListPicks)
		r.Post("/start", s.handleStart)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Post("/complete", s.handleComplete)
		r.Post("/picks", s.handleMakePick)
		r.Post("/force-skip", s.handleForceSkip)
		r.Post("/check-timeout", s.handleCheckTimeout)
		r.Put("/settings", s.handleUpdateSettings)
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeErr(w http.ResponseWriter, code string, msg string, status int) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

// writeAppErr maps app-layer sentinel errors to HTTP statuses. Anything
// unrecognized is a 500 with the detail kept in the server log.
func writeAppErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		writeErr(w, "NOT_FOUND", err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidState):
		writeErr(w, "INVALID_STATE", err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotYourTurn):
		writeErr(w, "NOT_YOUR_TURN", err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrResourceTaken):
		writeErr(w, "RESOURCE_TAKEN", err.Error(), http.StatusConflict)
	case errors.Is(err, ErrConcurrencyConflict):
		writeErr(w, "CONFLICT", err.Error(), http.StatusConflict)
	case errors.Is(err, ErrValidation):
		writeErr(w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("draft request failed")
		writeErr(w, "INTERNAL", "internal error", http.StatusInternalServerError)
	}
}

func draftIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "draftID"))
	return id, err == nil
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, "BAD_REQUEST", "invalid json", http.StatusBadRequest)
		return
	}
	draft, err := s.app.CreateDraft(r.Context(), req)
	if err != nil {
		if isValidationErr(err) {
			writeErr(w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"draft": draft})
}

func (s *Service) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	status, err := s.app.GetStatus(r.Context(), id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Service) handleListPicks(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	picks, err := s.app.ListPicks(r.Context(), id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"picks": picks})
}

func (s *Service) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*models.Draft, error)) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	draft, err := op(r.Context(), id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.app.StartDraft)
}

func (s *Service) handlePause(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.app.PauseDraft)
}

func (s *Service) handleResume(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.app.ResumeDraft)
}

func (s *Service) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.app.CompleteDraft)
}

func (s *Service) handleMakePick(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	var req struct {
		ParticipantID uuid.UUID `json:"participant_id"`
		ResourceID    string    `json:"resource_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, "BAD_REQUEST", "invalid json", http.StatusBadRequest)
		return
	}
	if req.ParticipantID == uuid.Nil {
		writeErr(w, "BAD_REQUEST", "participant_id is required", http.StatusBadRequest)
		return
	}
	if req.ResourceID == "" || req.ResourceID == models.ResourceSkipped {
		writeErr(w, "BAD_REQUEST", "resource_id is reserved or empty", http.StatusBadRequest)
		return
	}
	pick, err := s.app.MakePick(r.Context(), id, req.ParticipantID, req.ResourceID)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"pick": pick})
}

func (s *Service) handleForceSkip(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	pick, err := s.app.ForceSkip(r.Context(), id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"pick": pick})
}

func (s *Service) handleCheckTimeout(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	result, err := s.app.CheckAndHandleTimeout(r.Context(), id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDFromRequest(r)
	if !ok {
		writeErr(w, "BAD_REQUEST", "invalid draft id", http.StatusBadRequest)
		return
	}
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, "BAD_REQUEST", "invalid json", http.StatusBadRequest)
		return
	}
	settings, err := s.app.UpdateSettings(r.Context(), id, req)
	if err != nil {
		if isValidationErr(err) {
			writeErr(w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrValidation)
}
