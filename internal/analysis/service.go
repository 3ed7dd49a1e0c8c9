package analysis

import (
	"context"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/arealens/arealens/internal/climate"
	"github.com/arealens/arealens/internal/elevation"
	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/landuse"
	"github.com/arealens/arealens/internal/population"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/sourcechain"
	"github.com/arealens/arealens/internal/weather"
)

const tracerName = "github.com/arealens/arealens/internal/analysis"

// DefaultLargeAreaThresholdKm2 is the area above which land-use providers are skipped.
const DefaultLargeAreaThresholdKm2 = 100.0

// Providers lists the sources of each category in priority order.
type Providers struct {
	Population []population.Provider
	LandUse    []landuse.Provider
	Climate    []climate.Provider
	Elevation  []elevation.Provider
	Weather    []weather.Provider
}

// Config holds configuration for the analysis service.
type Config struct {
	// Providers are the data sources per category.
	Providers Providers

	// ProviderTimeout bounds each provider attempt (default: sourcechain.DefaultTimeout).
	ProviderTimeout time.Duration

	// LargeAreaThresholdKm2 skips land-use providers above this area (default: 100).
	LargeAreaThresholdKm2 float64

	// NewRand returns an independent random source per chain (default: estimate.NewRand).
	NewRand func() estimate.Rand

	// Registry records provider health (optional).
	Registry *resilience.Registry

	// Metrics records chain metrics (optional).
	Metrics *sourcechain.Metrics

	// Tracer for aggregate and chain spans (default: global tracer).
	Tracer trace.Tracer

	// Logger for service operations.
	Logger zerolog.Logger

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Service aggregates polygon metrics and category data.
type Service struct {
	cfg Config
}

// NewService creates a new analysis service.
func NewService(cfg Config) *Service {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = sourcechain.DefaultTimeout
	}
	if cfg.LargeAreaThresholdKm2 <= 0 {
		cfg.LargeAreaThresholdKm2 = DefaultLargeAreaThresholdKm2
	}
	if cfg.NewRand == nil {
		cfg.NewRand = estimate.NewRand
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg}
}

// Metrics computes the geometry of the ring.
func (s *Service) Metrics(ring geometry.Ring) geometry.Metrics {
	return geometry.Compute(ring)
}

// GeoJSON returns the ring as a closed GeoJSON polygon feature, or nil for
// fewer than three vertices.
func (s *Service) GeoJSON(ring geometry.Ring) *geojson.Feature {
	return geometry.ToGeoJSON(ring)
}

// Aggregate computes the polygon metrics once and resolves every category
// concurrently. It always returns a complete report: categories whose sources
// all fail, or that are cut short by ctx, carry estimator values.
func (s *Service) Aggregate(ctx context.Context, ring geometry.Ring, creds Credentials) *Report {
	ctx, span := s.cfg.Tracer.Start(ctx, "analysis.Aggregate")
	defer span.End()

	polygon := geometry.NewPolygon(ring)
	m := polygon.Metrics
	centroid := m.Centroid
	degenerate := geometry.IsDegenerate(polygon.Ring)

	span.SetAttributes(
		attribute.Int("polygon.vertices", m.VertexCount),
		attribute.Float64("polygon.area_km2", m.AreaSquareKilometers()),
	)

	logger := s.cfg.Logger.With().
		Int("vertices", m.VertexCount).
		Float64("area_km2", m.AreaSquareKilometers()).
		Logger()

	p := s.cfg.Providers
	if degenerate {
		logger.Debug().Msg("ring has fewer than three distinct vertices, using estimates only")
		p = Providers{}
	}
	if m.AreaSquareKilometers() > s.cfg.LargeAreaThresholdKm2 && len(p.LandUse) > 0 {
		logger.Info().
			Float64("threshold_km2", s.cfg.LargeAreaThresholdKm2).
			Msg("area too large for land-use providers, using estimate")
		p.LandUse = nil
	}

	var (
		popOut  sourcechain.Outcome[*population.Result]
		landOut sourcechain.Outcome[*landuse.Result]
		climOut sourcechain.Outcome[*climate.Result]
		elevOut sourcechain.Outcome[*elevation.Result]
		wxOut   sourcechain.Outcome[*weather.Result]
	)

	var g errgroup.Group

	g.Go(func() error {
		r := s.cfg.NewRand()
		popOut = sourcechain.New(s.chainConfig(CategoryPopulation, logger),
			func() *population.Result { return population.Estimate(m, r) },
			buildSources(p.Population, creds, func(pr population.Provider) fetchFunc[*population.Result] {
				return func(ctx context.Context, cred string) (*population.Result, error) {
					return pr.GetPopulation(ctx, polygon, cred)
				}
			})...,
		).Run(ctx)
		return nil
	})

	g.Go(func() error {
		r := s.cfg.NewRand()
		landOut = sourcechain.New(s.chainConfig(CategoryLandUse, logger),
			func() *landuse.Result { return landuse.Estimate(m, r) },
			buildSources(p.LandUse, creds, func(pr landuse.Provider) fetchFunc[*landuse.Result] {
				return func(ctx context.Context, cred string) (*landuse.Result, error) {
					return pr.GetLandUse(ctx, polygon, cred)
				}
			})...,
		).Run(ctx)
		return nil
	})

	g.Go(func() error {
		r := s.cfg.NewRand()
		climOut = sourcechain.New(s.chainConfig(CategoryClimate, logger),
			func() *climate.Result { return climate.Estimate(centroid, r) },
			buildSources(p.Climate, creds, func(pr climate.Provider) fetchFunc[*climate.Result] {
				return func(ctx context.Context, cred string) (*climate.Result, error) {
					return pr.GetClimate(ctx, centroid, cred)
				}
			})...,
		).Run(ctx)
		return nil
	})

	g.Go(func() error {
		r := s.cfg.NewRand()
		elevOut = sourcechain.New(s.chainConfig(CategoryElevation, logger),
			func() *elevation.Result { return elevation.Estimate(centroid, r) },
			buildSources(p.Elevation, creds, func(pr elevation.Provider) fetchFunc[*elevation.Result] {
				return func(ctx context.Context, cred string) (*elevation.Result, error) {
					return pr.GetElevation(ctx, centroid, cred)
				}
			})...,
		).Run(ctx)
		return nil
	})

	g.Go(func() error {
		r := s.cfg.NewRand()
		wxOut = sourcechain.New(s.chainConfig(CategoryWeather, logger),
			func() *weather.Result { return weather.Estimate(centroid, r) },
			buildSources(p.Weather, creds, func(pr weather.Provider) fetchFunc[*weather.Result] {
				return func(ctx context.Context, cred string) (*weather.Result, error) {
					return pr.GetCurrentWeather(ctx, centroid, cred)
				}
			})...,
		).Run(ctx)
		return nil
	})

	_ = g.Wait() //nolint:errcheck // chains never return errors

	report := &Report{
		Metrics:    m,
		Population: popOut.Value,
		LandUse:    landOut.Value,
		Climate:    climOut.Value,
		Elevation:  elevOut.Value,
		Weather:    wxOut.Value,
		Provenance: map[Category]Provenance{
			CategoryPopulation: provenanceOf(popOut),
			CategoryLandUse:    provenanceOf(landOut),
			CategoryClimate:    provenanceOf(climOut),
			CategoryElevation:  provenanceOf(elevOut),
			CategoryWeather:    provenanceOf(wxOut),
		},
		GeneratedAt: s.cfg.Now().UTC(),
	}

	estimated := report.EstimatedCategories()
	span.SetAttributes(attribute.Int("categories.estimated", len(estimated)))
	logger.Info().
		Int("estimated", len(estimated)).
		Str("population_source", popOut.Source).
		Str("landuse_source", landOut.Source).
		Str("climate_source", climOut.Source).
		Str("elevation_source", elevOut.Source).
		Str("weather_source", wxOut.Source).
		Msg("area analyzed")

	return report
}

func (s *Service) chainConfig(category Category, logger zerolog.Logger) sourcechain.Config {
	return sourcechain.Config{
		Category: string(category),
		Timeout:  s.cfg.ProviderTimeout,
		Logger:   logger,
		Registry: s.cfg.Registry,
		Metrics:  s.cfg.Metrics,
		Tracer:   s.cfg.Tracer,
	}
}

type fetchFunc[T sourcechain.Result] func(ctx context.Context, credential string) (T, error)

// namedProvider is the part shared by every category provider interface.
type namedProvider interface {
	Name() string
	RequiresCredential() bool
}

// buildSources turns providers into chain sources bound to the request's credentials.
func buildSources[P namedProvider, T sourcechain.Result](providers []P, creds Credentials, bind func(P) fetchFunc[T]) []sourcechain.Source[T] {
	sources := make([]sourcechain.Source[T], 0, len(providers))
	for _, pr := range providers {
		sources = append(sources, sourcechain.Source[T]{
			Name:               pr.Name(),
			RequiresCredential: pr.RequiresCredential(),
			Credential:         creds.For(pr.Name()),
			Fetch:              bind(pr),
		})
	}
	return sources
}
