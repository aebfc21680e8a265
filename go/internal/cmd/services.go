package main

import (
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/poolhouse/pooldraft/go/internal/draft"
	"github.com/poolhouse/pooldraft/go/internal/draft/outbox"
	"github.com/poolhouse/pooldraft/go/internal/draft/sweeper"
)

// Services holds the wired application components.
type Services struct {
	Draft        *draft.Service
	OutboxWorker *outbox.Worker
	Sweeper      *sweeper.Sweeper
}

func setupServices(pool *pgxpool.Pool, cfg *Config) (*Services, error) {
	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	draftRepo := draft.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxApp := outbox.NewApp(outboxRepo)

	draftApp := draft.NewApp(draftRepo, outboxApp, clock, rng)
	draftService := draft.NewService(draftApp)

	var publisher outbox.EventPublisher = outbox.LogPublisher{}
	if cfg.NATS.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		js, err := outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			return nil, err
		}
		publisher = js
	}

	workerCfg := outbox.DefaultWorkerConfig()
	workerCfg.PollInterval = cfg.Outbox.PollInterval
	workerCfg.BatchSize = cfg.Outbox.BatchSize
	worker := outbox.NewWorker(pool, outboxRepo, publisher, workerCfg)

	sw := sweeper.New(draftRepo, draftApp, clock, cfg.Sweeper.BatchSize)

	return &Services{
		Draft:        draftService,
		OutboxWorker: worker,
		Sweeper:      sw,
	}, nil
}
