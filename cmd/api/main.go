// Package main provides the entrypoint for the AreaLens API server.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api"
	"github.com/arealens/arealens/internal/api/middleware"
	"github.com/arealens/arealens/internal/config"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/sourcechain"
	"github.com/arealens/arealens/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "arealens-api"

	dotenvErr := godotenv.Load()
	cfg := config.FromEnv()

	// Setup structured logging
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

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting AreaLens API")

	// Initialize OpenTelemetry
	ctx := context.Background()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	chainMetrics, err := sourcechain.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize source chain metrics")
		os.Exit(1)
	}

	// Providers and analysis
	registry := resilience.NewRegistry()
	providers := analysis.NewDefaultProviders(analysis.ProviderOptions{
		Registry:             registry,
		HTTPTimeout:          cfg.ProviderTimeout,
		ClimateReferenceYear: cfg.ClimateReferenceYear,
		Logger:               log,
	})
	service := analysis.NewService(analysis.Config{
		Providers:             providers,
		ProviderTimeout:       cfg.ProviderTimeout,
		LargeAreaThresholdKm2: cfg.LargeAreaThresholdKm2,
		Registry:              registry,
		Metrics:               chainMetrics,
		Tracer:                tp.Tracer,
		Logger:                log,
	})

	credentials := cfg.Credentials()
	log.Info().
		Int("providers", registry.ProviderCount()).
		Int("credentials", len(credentials)).
		Msg("analysis service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     httpMetrics,
		Analyzer:    service,
		Registry:    registry,
		Credentials: credentials,
		RequireTLS:  cfg.RequireTLS,
	})

	// A full analysis can wait on five provider chains, each of which may
	// time out more than once before falling back.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
