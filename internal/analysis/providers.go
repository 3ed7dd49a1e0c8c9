package analysis

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/climate"
	"github.com/arealens/arealens/internal/climate/meteostat"
	climateopenmeteo "github.com/arealens/arealens/internal/climate/openmeteo"
	"github.com/arealens/arealens/internal/elevation"
	elevationopenmeteo "github.com/arealens/arealens/internal/elevation/openmeteo"
	"github.com/arealens/arealens/internal/elevation/opentopodata"
	"github.com/arealens/arealens/internal/geocode/nominatim"
	"github.com/arealens/arealens/internal/landuse"
	"github.com/arealens/arealens/internal/landuse/overpass"
	"github.com/arealens/arealens/internal/population"
	"github.com/arealens/arealens/internal/population/worldpop"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/weather"
	weatheropenmeteo "github.com/arealens/arealens/internal/weather/openmeteo"
	"github.com/arealens/arealens/internal/weather/openweathermap"
)

// ProviderOptions configures the default provider set.
type ProviderOptions struct {
	// Registry receives every provider HTTP client (optional).
	Registry *resilience.Registry

	// HTTPTimeout bounds a single HTTP attempt (default: 10 seconds).
	HTTPTimeout time.Duration

	// ClimateReferenceYear is the year folded by the Open-Meteo climate provider.
	ClimateReferenceYear int

	Logger zerolog.Logger
}

// NewDefaultProviders builds the public data sources in priority order.
func NewDefaultProviders(opts ProviderOptions) Providers {
	httpClient := func(name string) *resilience.Client {
		cfg := resilience.DefaultClientConfig(name)
		if opts.HTTPTimeout > 0 {
			cfg.Timeout = opts.HTTPTimeout
		}
		cfg.CircuitBreaker.OnStateChange = resilience.LogStateChanges(opts.Logger)
		cfg.Registry = opts.Registry
		return resilience.NewClient(cfg)
	}

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		HTTPClient: httpClient(nominatim.ProviderName),
		Logger:     opts.Logger,
	})

	return Providers{
		Population: []population.Provider{
			worldpop.NewClient(worldpop.ClientConfig{
				HTTPClient: httpClient(worldpop.ProviderName),
				Logger:     opts.Logger,
			}),
			population.NewCountryDensityProvider(geocoder, opts.Logger),
		},
		LandUse: []landuse.Provider{
			overpass.NewClient(overpass.ClientConfig{
				HTTPClient: httpClient(overpass.ProviderName),
				Logger:     opts.Logger,
			}),
		},
		Climate: []climate.Provider{
			climateopenmeteo.NewClient(climateopenmeteo.ClientConfig{
				ReferenceYear: opts.ClimateReferenceYear,
				HTTPClient:    httpClient(climateopenmeteo.ProviderName),
				Logger:        opts.Logger,
			}),
			meteostat.NewClient(meteostat.ClientConfig{
				HTTPClient: httpClient(meteostat.ProviderName),
				Logger:     opts.Logger,
			}),
		},
		Elevation: []elevation.Provider{
			elevationopenmeteo.NewClient(elevationopenmeteo.ClientConfig{
				HTTPClient: httpClient(elevationopenmeteo.ProviderName),
				Logger:     opts.Logger,
			}),
			opentopodata.NewClient(opentopodata.ClientConfig{
				HTTPClient: httpClient(opentopodata.ProviderName),
				Logger:     opts.Logger,
			}),
		},
		Weather: []weather.Provider{
			openweathermap.NewClient(openweathermap.ClientConfig{
				HTTPClient: httpClient(openweathermap.ProviderName),
				Logger:     opts.Logger,
			}),
			weatheropenmeteo.NewClient(weatheropenmeteo.ClientConfig{
				HTTPClient: httpClient(weatheropenmeteo.ProviderName),
				Logger:     opts.Logger,
			}),
		},
	}
}
