// Package api provides the HTTP API for AreaLens.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api/handler"
	"github.com/arealens/arealens/internal/api/middleware"
	"github.com/arealens/arealens/internal/api/response"
	"github.com/arealens/arealens/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Analyzer serves the area endpoints.
	Analyzer handler.Analyzer

	// Registry backs /v1/ops/status. Optional.
	Registry *resilience.Registry

	// Credentials configured on the server, keyed by provider name.
	Credentials analysis.Credentials

	// RequireTLS rejects plain HTTP requests that were not forwarded by a
	// TLS-terminating proxy.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "arealens-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type
	r.Use(middleware.RequireJSON)                // JSON request bodies

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r, r.Method+" is not supported on "+r.URL.Path)
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	areaHandler := handler.NewAreaHandler(cfg.Analyzer, cfg.Credentials)

	analyzeRateLimit := middleware.RateLimitByIP(middleware.AnalyzeRateLimit)   // 20 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 120 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Full analyses fan out to every provider.
		r.With(analyzeRateLimit).Post("/areas:analyze", areaHandler.Analyze)

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Post("/areas:metrics", areaHandler.Metrics)
			r.Post("/areas:geojson", areaHandler.GeoJSON)
		})
	})

	return r
}
