package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/poolhouse/pooldraft/go/internal/draft"
	"github.com/rs/zerolog/log"
)

// TimeoutChecker defines what the sweeper needs from the draft app.
type TimeoutChecker interface {
	CheckAndHandleTimeout(ctx context.Context, draftID uuid.UUID) (*draft.TimeoutResult, error)
}

// WakeStore defines what the sweeper needs from the draft store: the
// soonest instant any draft needs attention, and the drafts already due.
type WakeStore interface {
	FetchNextWake(ctx context.Context) (*time.Time, error)
	FetchDraftsDue(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
}

// Sweeper sleeps until the next reminder or auto-skip deadline across all
// in-progress drafts, then fans the due drafts out to a worker pool that
// invokes the timeout check. The draft app is the external trigger's
// actual handler; the sweeper only decides when and for whom to call it.
type Sweeper struct {
	store      WakeStore
	checker    TimeoutChecker
	clock      clockwork.Clock
	batchSize  int32
	instanceID string

	numWorkers int
	workCh     chan uuid.UUID
	wakeCh     chan struct{}

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func New(store WakeStore, checker TimeoutChecker, clock clockwork.Clock, batchSize int32) *Sweeper {
	numWorkers := 10
	return &Sweeper{
		store:      store,
		checker:    checker,
		clock:      clock,
		batchSize:  batchSize,
		instanceID: uuid.New().String()[:8],

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		wakeCh:     make(chan struct{}, 1),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler loop out of its sleep, used when a new
// deadline may be sooner than the one it is waiting on.
func (s *Sweeper) Wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run loops until the context is cancelled, sleeping until the next
// deadline and dispatching due drafts.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("sweeper started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i)
	}
	defer func() {
		cancelWorkers()
		close(s.workCh)
		wg.Wait()
		log.Info().Str("instance", s.instanceID).Msg("all sweeper workers shut down")
	}()

	timer := s.clock.NewTimer(time.Hour)
	defer timer.Stop()

	const idlePollDuration = 5 * time.Second
	retryCount := 0
	const maxRetries = 3

	for {
		select {
		case <-s.wakeCh:
		default:
		}

		next, err := s.store.FetchNextWake(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxRetries {
				log.Error().Err(err).
					Int("retry", retryCount).
					Str("instance", s.instanceID).
					Msg("error fetching next wake, retrying")
				if !s.sleep(ctx, timer, time.Second*time.Duration(retryCount)) {
					return nil
				}
				continue
			}
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching next wake after retries")
			return err
		}
		retryCount = 0

		if next == nil {
			// Nothing armed anywhere; idle until poll or wake.
			if !s.sleep(ctx, timer, idlePollDuration) {
				return nil
			}
			continue
		}

		if wait := next.Sub(s.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				log.Info().Str("instance", s.instanceID).Msg("shutdown during wait")
				return nil
			case <-s.wakeCh:
				// A sooner deadline may exist now; recompute.
				continue
			}
		}

		due, err := s.store.FetchDraftsDue(ctx, s.clock.Now(), s.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching due drafts")
			if !s.sleep(ctx, timer, time.Second) {
				return nil
			}
			continue
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Str("instance", s.instanceID).
				Msg("dispatching due drafts")
		}

		for _, draftID := range due {
			s.inFlightMu.Lock()
			if s.inFlight[draftID] {
				s.inFlightMu.Unlock()
				continue
			}
			s.inFlight[draftID] = true
			s.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				s.inFlightMu.Lock()
				delete(s.inFlight, draftID)
				s.inFlightMu.Unlock()
				log.Info().Str("instance", s.instanceID).Msg("shutdown while queueing timeouts")
				return nil
			case s.workCh <- draftID:
			}
		}

		// Due drafts dispatched; brief pause so a draft whose check did
		// not advance state (reminder sent, skip disabled) does not spin
		// the loop.
		if !s.sleep(ctx, timer, time.Second) {
			return nil
		}
	}
}

// sleep parks the loop on the shared timer. Returns false on shutdown.
func (s *Sweeper) sleep(ctx context.Context, timer clockwork.Timer, d time.Duration) bool {
	timer.Reset(d)
	select {
	case <-timer.Chan():
		return true
	case <-s.wakeCh:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Sweeper) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case draftID, ok := <-s.workCh:
			if !ok {
				return
			}

			result, err := s.checker.CheckAndHandleTimeout(ctx, draftID)
			if err != nil {
				log.Error().Err(err).
					Str("draft_id", draftID.String()).
					Str("instance", s.instanceID).
					Int("worker_id", workerID).
					Msg("timeout check failed")
			} else if result.Skipped || result.Reminded {
				log.Info().
					Str("draft_id", draftID.String()).
					Bool("skipped", result.Skipped).
					Bool("reminded", result.Reminded).
					Int("worker_id", workerID).
					Msg("timeout check acted")
			}

			s.inFlightMu.Lock()
			delete(s.inFlight, draftID)
			s.inFlightMu.Unlock()
		}
	}
}
