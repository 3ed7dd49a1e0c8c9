// Package main provides the entrypoint for the AreaLens analysis worker.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api/handler"
	"github.com/arealens/arealens/internal/config"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/sourcechain"
	"github.com/arealens/arealens/internal/telemetry"
	"github.com/arealens/arealens/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "arealens-worker"

	dotenvErr := godotenv.Load()
	cfg := config.FromEnv()

	log := zerolog.New(os.Stdout).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		log.Warn().Err(dotenvErr).Msg("failed to load .env file")
	}
	if cfg.PubSubProjectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AreaLens worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	chainMetrics, err := sourcechain.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize source chain metrics")
	}

	registry := resilience.NewRegistry()
	service := analysis.NewService(analysis.Config{
		Providers: analysis.NewDefaultProviders(analysis.ProviderOptions{
			Registry:             registry,
			HTTPTimeout:          cfg.ProviderTimeout,
			ClimateReferenceYear: cfg.ClimateReferenceYear,
			Logger:               log,
		}),
		ProviderTimeout:       cfg.ProviderTimeout,
		LargeAreaThresholdKm2: cfg.LargeAreaThresholdKm2,
		Registry:              registry,
		Metrics:               chainMetrics,
		Tracer:                tp.Tracer,
		Logger:                log,
	})

	w, err := worker.NewPubSubWorker(ctx, worker.PubSubConfig{
		ProjectID:        cfg.PubSubProjectID,
		SubscriptionName: cfg.PubSubSubscription,
		ResultTopic:      cfg.PubSubResultTopic,
		Processor: worker.ProcessorConfig{
			Analyzer:    service,
			Credentials: cfg.Credentials(),
		},
		Logger: log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub worker")
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub worker")
		}
	}()

	// Cloud Run needs an HTTP listener; it also exposes provider health.
	ops := handler.NewOpsHandler(Version, BuildTime, registry)
	mux := chi.NewRouter()
	mux.Get("/v1/ops/health", ops.HealthCheck)
	mux.Get("/v1/ops/status", ops.SystemStatus)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub worker stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	stats := w.Stats()
	log.Info().
		Int64("processed", stats.Processed).
		Int64("published", stats.Published).
		Int64("dropped", stats.Dropped).
		Int64("failed", stats.Failed).
		Msg("worker stopped")
}
