// Standalone deadline sweeper. Runs the timeout sweep loop and the
// outbox relay against the shared database, separate from the API
// binary so draft deadlines keep firing through API deploys.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/poolhouse/pooldraft/go/internal/dbconfig"
	"github.com/poolhouse/pooldraft/go/internal/draft"
	"github.com/poolhouse/pooldraft/go/internal/draft/outbox"
	"github.com/poolhouse/pooldraft/go/internal/draft/sweeper"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().Str("database", dbCfg.Database).Msg("starting draft sweeper")

	draftRepo := draft.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxApp := outbox.NewApp(outboxRepo)

	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	app := draft.NewApp(draftRepo, outboxApp, clock, rng)

	var publisher outbox.EventPublisher = outbox.LogPublisher{}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = natsURL
		js, err := outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer js.Close()
		publisher = js
	}

	relay := outbox.NewWorker(pool, outboxRepo, publisher, outbox.DefaultWorkerConfig())
	if err := relay.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox relay")
	}

	batchSize := int32(getEnvAsInt("SWEEPER_BATCH_SIZE", 50))
	sw := sweeper.New(draftRepo, app, clock, batchSize)
	go func() {
		if err := sw.Run(ctx); err != nil {
			log.Error().Err(err).Msg("sweeper failed")
			cancel()
		}
	}()

	// Health endpoint so the deploy can probe the process.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	server := &http.Server{
		Addr:         ":" + getEnv("SWEEPER_PORT", "8082"),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server shutdown failed")
	}
	if err := relay.Stop(); err != nil {
		log.Error().Err(err).Msg("outbox relay stop failed")
	}
	cancel()

	log.Info().Msg("draft sweeper shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
