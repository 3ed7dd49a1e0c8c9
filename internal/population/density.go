package population

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

// CountryDensityProviderName is the provenance tag of the country lookup path.
const CountryDensityProviderName = "nominatim-country-density"

// Geocoder resolves a point to an ISO 3166-1 alpha-2 country code.
type Geocoder interface {
	CountryCode(ctx context.Context, lat, lon float64) (string, error)
}

// CountryDensityProvider estimates population from the national average
// density of the country containing the polygon's centroid.
type CountryDensityProvider struct {
	geocoder Geocoder
	logger   zerolog.Logger
}

// NewCountryDensityProvider creates a provider backed by the given geocoder.
func NewCountryDensityProvider(geocoder Geocoder, logger zerolog.Logger) *CountryDensityProvider {
	return &CountryDensityProvider{geocoder: geocoder, logger: logger}
}

// Name returns the provider name.
func (p *CountryDensityProvider) Name() string {
	return CountryDensityProviderName
}

// RequiresCredential reports false; the geocoder is a public service.
func (p *CountryDensityProvider) RequiresCredential() bool {
	return false
}

// GetPopulation multiplies the polygon area by the country's density.
// Countries missing from the table use the world average.
func (p *CountryDensityProvider) GetPopulation(ctx context.Context, polygon geometry.Polygon, _ string) (*Result, error) {
	c := polygon.Metrics.Centroid
	code, err := p.geocoder.CountryCode(ctx, c.Lat, c.Lon)
	if err != nil {
		return nil, fmt.Errorf("resolving country: %w", err)
	}

	density, known := geography.CountryDensity(code)
	if !known {
		p.logger.Debug().
			Str("country", code).
			Float64("density", density).
			Msg("country not in density table, using world average")
	}

	return FromDensity(polygon.Metrics.AreaSquareKilometers(), density), nil
}
