package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poolhouse/pooldraft/go/internal/models"
)

// Repository is the Postgres-backed draft record store.
//
// The backing store offers no cross-statement guarantees to callers, so
// every multi-row mutation here runs inside a single pgx transaction and
// the pick-counter advance is guarded by a compare-and-swap on
// current_pick.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ApplyPickRequest carries one fully-resolved pick plus the state the
// caller read it against. ExpectedPick is the CAS guard: the update only
// applies if the draft's current_pick still matches it.
type ApplyPickRequest struct {
	Pick         models.DraftPick
	ExpectedPick int
	NextDeadline *time.Time // nil when the draft completes with this pick
	Complete     bool
	CompletedAt  *time.Time
}

const draftColumns = `id, pool_id, status, draft_order, current_pick, total_rounds, created_by, created_at, started_at, completed_at, updated_at`

// withTx runs fn inside a transaction, rolling back on error.
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateDraft inserts the draft along with its settings, timer, and
// resource catalog rows in one transaction.
func (r *Repository) CreateDraft(ctx context.Context, draft *models.Draft, settings *models.DraftSettings, resourceIDs []string) error {
	orderBytes, err := json.Marshal(draft.DraftOrder)
	if err != nil {
		return fmt.Errorf("failed to marshal draft order: %w", err)
	}

	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO drafts (id, pool_id, status, draft_order, current_pick, total_rounds, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $7)`,
			draft.ID, draft.PoolID, draft.Status, orderBytes, draft.TotalRounds, draft.CreatedBy, draft.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert draft: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO draft_settings (draft_id, time_per_pick_sec, reminder_lead_sec, auto_skip_enabled, auto_skip_grace_sec, round_break_sec, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			settings.DraftID, settings.TimePerPickSec, settings.ReminderLeadSec,
			settings.AutoSkipEnabled, settings.AutoSkipGraceSec, settings.RoundBreakSec, draft.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert draft settings: %w", err)
		}

		_, err = tx.Exec(ctx, `INSERT INTO draft_timers (draft_id, updated_at) VALUES ($1, $2)`,
			draft.ID, draft.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert draft timer: %w", err)
		}

		for _, resourceID := range resourceIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO draft_resources (draft_id, resource_id) VALUES ($1, $2)`,
				draft.ID, resourceID); err != nil {
				return fmt.Errorf("failed to insert draft resource %q: %w", resourceID, err)
			}
		}
		return nil
	})
}

// GetDraft retrieves a draft by ID.
func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// GetSettings retrieves the settings row for a draft.
func (r *Repository) GetSettings(ctx context.Context, draftID uuid.UUID) (*models.DraftSettings, error) {
	var s models.DraftSettings
	err := r.pool.QueryRow(ctx, `
		SELECT draft_id, time_per_pick_sec, reminder_lead_sec, auto_skip_enabled, auto_skip_grace_sec, round_break_sec, updated_at
		FROM draft_settings WHERE draft_id = $1`, draftID).
		Scan(&s.DraftID, &s.TimePerPickSec, &s.ReminderLeadSec, &s.AutoSkipEnabled, &s.AutoSkipGraceSec, &s.RoundBreakSec, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft settings: %w", err)
	}
	return &s, nil
}

// UpdateSettings replaces the editable settings values for a draft.
func (r *Repository) UpdateSettings(ctx context.Context, s *models.DraftSettings) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE draft_settings
		SET time_per_pick_sec = $2, reminder_lead_sec = $3, auto_skip_enabled = $4,
		    auto_skip_grace_sec = $5, round_break_sec = $6, updated_at = now()
		WHERE draft_id = $1`,
		s.DraftID, s.TimePerPickSec, s.ReminderLeadSec, s.AutoSkipEnabled, s.AutoSkipGraceSec, s.RoundBreakSec)
	if err != nil {
		return fmt.Errorf("failed to update draft settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// GetTimer retrieves the timer row for a draft.
func (r *Repository) GetTimer(ctx context.Context, draftID uuid.UUID) (*models.DraftTimer, error) {
	var t models.DraftTimer
	err := r.pool.QueryRow(ctx, `
		SELECT draft_id, deadline, reminder_sent_for, paused_at, remaining_sec, updated_at
		FROM draft_timers WHERE draft_id = $1`, draftID).
		Scan(&t.DraftID, &t.Deadline, &t.ReminderSentFor, &t.PausedAt, &t.RemainingSec, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft timer: %w", err)
	}
	return &t, nil
}

// ListPicks returns the committed picks for a draft in pick order.
func (r *Repository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, draft_id, round, pick_number, participant_id, resource_id, auto, picked_at, elapsed_sec
		FROM draft_picks WHERE draft_id = $1 ORDER BY pick_number`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.Round, &p.PickNumber, &p.ParticipantID, &p.ResourceID, &p.Auto, &p.PickedAt, &p.ElapsedSec); err != nil {
			return nil, fmt.Errorf("failed to scan draft pick: %w", err)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// ListAvailableResources returns the catalog minus every resource already
// claimed by a non-skip pick.
func (r *Repository) ListAvailableResources(ctx context.Context, draftID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT dr.resource_id
		FROM draft_resources dr
		WHERE dr.draft_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM draft_picks dp
			WHERE dp.draft_id = dr.draft_id
			  AND dp.resource_id = dr.resource_id
		  )
		ORDER BY dr.resource_id`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available resources: %w", err)
	}
	defer rows.Close()

	var resources []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, id)
	}
	return resources, rows.Err()
}

// StartDraft flips a pending draft to in progress and arms the first
// deadline. A zero-row update after validation means another caller got
// there first.
func (r *Repository) StartDraft(ctx context.Context, id uuid.UUID, startedAt, deadline time.Time) (*models.Draft, error) {
	var draft *models.Draft
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drafts SET status = $2, started_at = $3, updated_at = $3
			WHERE id = $1 AND status = $4
			RETURNING `+draftColumns,
			id, models.DraftStatusInProgress, startedAt, models.DraftStatusPending)
		d, err := scanDraft(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to start draft: %w", err)
		}
		draft = d

		_, err = tx.Exec(ctx, `
			UPDATE draft_timers
			SET deadline = $2, reminder_sent_for = NULL, paused_at = NULL, remaining_sec = NULL, updated_at = $3
			WHERE draft_id = $1`, id, deadline, startedAt)
		if err != nil {
			return fmt.Errorf("failed to arm draft timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// PauseDraft parks an in-progress draft, snapshotting the remaining time
// so resume can restore it.
func (r *Repository) PauseDraft(ctx context.Context, id uuid.UUID, pausedAt time.Time, remainingSec int) (*models.Draft, error) {
	var draft *models.Draft
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drafts SET status = $2, updated_at = $3
			WHERE id = $1 AND status = $4
			RETURNING `+draftColumns,
			id, models.DraftStatusPaused, pausedAt, models.DraftStatusInProgress)
		d, err := scanDraft(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to pause draft: %w", err)
		}
		draft = d

		_, err = tx.Exec(ctx, `
			UPDATE draft_timers
			SET deadline = NULL, paused_at = $2, remaining_sec = $3, updated_at = $2
			WHERE draft_id = $1`, id, pausedAt, remainingSec)
		if err != nil {
			return fmt.Errorf("failed to park draft timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// ResumeDraft puts a paused draft back in progress with a fresh deadline
// computed from the pause snapshot, clearing the snapshot.
func (r *Repository) ResumeDraft(ctx context.Context, id uuid.UUID, resumedAt, deadline time.Time) (*models.Draft, error) {
	var draft *models.Draft
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drafts SET status = $2, updated_at = $3
			WHERE id = $1 AND status = $4
			RETURNING `+draftColumns,
			id, models.DraftStatusInProgress, resumedAt, models.DraftStatusPaused)
		d, err := scanDraft(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to resume draft: %w", err)
		}
		draft = d

		_, err = tx.Exec(ctx, `
			UPDATE draft_timers
			SET deadline = $2, reminder_sent_for = NULL, paused_at = NULL, remaining_sec = NULL, updated_at = $3
			WHERE draft_id = $1`, id, deadline, resumedAt)
		if err != nil {
			return fmt.Errorf("failed to rearm draft timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// CompleteDraft stamps a draft completed and disarms its timer. Used for
// forced completion; natural completion happens inside ApplyPick.
func (r *Repository) CompleteDraft(ctx context.Context, id uuid.UUID, completedAt time.Time) (*models.Draft, error) {
	var draft *models.Draft
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drafts SET status = $2, completed_at = $3, updated_at = $3
			WHERE id = $1 AND status IN ($4, $5)
			RETURNING `+draftColumns,
			id, models.DraftStatusCompleted, completedAt, models.DraftStatusInProgress, models.DraftStatusPaused)
		d, err := scanDraft(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to complete draft: %w", err)
		}
		draft = d

		_, err = tx.Exec(ctx, `
			UPDATE draft_timers
			SET deadline = NULL, reminder_sent_for = NULL, paused_at = NULL, remaining_sec = NULL, updated_at = $2
			WHERE draft_id = $1`, id, completedAt)
		if err != nil {
			return fmt.Errorf("failed to disarm draft timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// ApplyPick commits one pick as a single logical unit: advance the pick
// counter (compare-and-swap on current_pick), insert the pick row, and
// reset or disarm the deadline. A lost race surfaces as
// ErrConcurrencyConflict and leaves no partial state behind.
func (r *Repository) ApplyPick(ctx context.Context, req ApplyPickRequest) (*models.DraftPick, error) {
	pick := req.Pick
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		status := models.DraftStatusInProgress
		if req.Complete {
			status = models.DraftStatusCompleted
		}
		tag, err := tx.Exec(ctx, `
			UPDATE drafts
			SET current_pick = current_pick + 1, status = $3, completed_at = $4, updated_at = $5
			WHERE id = $1 AND current_pick = $2 AND status = $6`,
			pick.DraftID, req.ExpectedPick, status, req.CompletedAt, pick.PickedAt, models.DraftStatusInProgress)
		if err != nil {
			return fmt.Errorf("failed to advance pick counter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConcurrencyConflict
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO draft_picks (id, draft_id, round, pick_number, participant_id, resource_id, auto, picked_at, elapsed_sec)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			pick.ID, pick.DraftID, pick.Round, pick.PickNumber, pick.ParticipantID, pick.ResourceID, pick.Auto, pick.PickedAt, pick.ElapsedSec)
		if err != nil {
			if isUniqueViolation(err, "ux_draft_picks_resource") {
				return ErrResourceTaken
			}
			if isUniqueViolation(err, "ux_draft_picks_number") {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to insert draft pick: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE draft_timers
			SET deadline = $2, reminder_sent_for = NULL, paused_at = NULL, remaining_sec = NULL, updated_at = $3
			WHERE draft_id = $1`, pick.DraftID, req.NextDeadline, pick.PickedAt)
		if err != nil {
			return fmt.Errorf("failed to reset draft timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

// MarkReminderSent records that a reminder went out for the given
// deadline. Returns false when the deadline moved on or the reminder was
// already sent, so at most one caller wins per deadline.
func (r *Repository) MarkReminderSent(ctx context.Context, draftID uuid.UUID, deadline time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE draft_timers
		SET reminder_sent_for = $2, updated_at = now()
		WHERE draft_id = $1 AND deadline = $2
		  AND (reminder_sent_for IS NULL OR reminder_sent_for <> $2)`,
		draftID, deadline)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FetchNextWake returns the earliest instant at which any in-progress
// draft needs attention (a reminder becoming due or a deadline expiring
// past its grace). Nil when no draft has an armed deadline.
func (r *Repository) FetchNextWake(ctx context.Context) (*time.Time, error) {
	var wake *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT MIN(w.wake_at) FROM (
			SELECT t.deadline - make_interval(secs => s.reminder_lead_sec) AS wake_at
			FROM draft_timers t
			JOIN drafts d ON d.id = t.draft_id
			JOIN draft_settings s ON s.draft_id = t.draft_id
			WHERE d.status = 'IN_PROGRESS' AND t.deadline IS NOT NULL
			  AND s.reminder_lead_sec > 0
			  AND (t.reminder_sent_for IS NULL OR t.reminder_sent_for <> t.deadline)
			UNION ALL
			SELECT t.deadline + make_interval(secs => s.auto_skip_grace_sec)
			FROM draft_timers t
			JOIN drafts d ON d.id = t.draft_id
			JOIN draft_settings s ON s.draft_id = t.draft_id
			WHERE d.status = 'IN_PROGRESS' AND t.deadline IS NOT NULL
			  AND s.auto_skip_enabled
		) w`).Scan(&wake)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next wake: %w", err)
	}
	return wake, nil
}

// FetchDraftsDue returns drafts whose reminder or auto-skip moment has
// passed, oldest deadline first.
func (r *Repository) FetchDraftsDue(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (t.draft_id) t.draft_id
		FROM draft_timers t
		JOIN drafts d ON d.id = t.draft_id
		JOIN draft_settings s ON s.draft_id = t.draft_id
		WHERE d.status = 'IN_PROGRESS' AND t.deadline IS NOT NULL
		  AND (
			(s.auto_skip_enabled AND t.deadline + make_interval(secs => s.auto_skip_grace_sec) <= $1)
			OR (s.reminder_lead_sec > 0
				AND t.deadline - make_interval(secs => s.reminder_lead_sec) <= $1
				AND (t.reminder_sent_for IS NULL OR t.reminder_sent_for <> t.deadline))
		  )
		ORDER BY t.draft_id, t.deadline
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due drafts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due draft: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var d models.Draft
	var orderBytes []byte
	err := row.Scan(&d.ID, &d.PoolID, &d.Status, &orderBytes, &d.CurrentPick, &d.TotalRounds,
		&d.CreatedBy, &d.CreatedAt, &d.StartedAt, &d.CompletedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(orderBytes, &d.DraftOrder); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft order: %w", err)
	}
	return &d, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
