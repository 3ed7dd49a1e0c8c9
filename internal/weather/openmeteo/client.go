// Package openmeteo fetches current conditions from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo-weather"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,surface_pressure,cloud_cover,weather_code"
)

// ClientConfig holds configuration for the Open-Meteo weather client.
type ClientConfig struct {
	// BaseURL is the forecast API URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo current weather client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo weather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// RequiresCredential reports false.
func (c *Client) RequiresCredential() bool {
	return false
}

// GetCurrentWeather fetches the current model conditions at the point.
func (c *Client) GetCurrentWeather(ctx context.Context, point geometry.Point, _ string) (*weather.Result, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=%s&wind_speed_unit=ms&timezone=UTC",
		c.baseURL, point.Lat, point.Lon, currentFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp forecastResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Reason)
	}

	cur := resp.Current
	if cur == nil || cur.Temperature == nil || cur.Humidity == nil || cur.WindSpeed == nil ||
		cur.Pressure == nil || cur.CloudCover == nil {
		return nil, fmt.Errorf("%w: incomplete current conditions", provider.ErrMalformed)
	}

	res := &weather.Result{
		TemperatureC:    *cur.Temperature,
		HumidityPercent: *cur.Humidity,
		WindSpeedMs:     *cur.WindSpeed,
		PressureHpa:     *cur.Pressure,
		CloudsPercent:   *cur.CloudCover,
	}
	if cur.WeatherCode != nil {
		res.Condition, res.Description = describeWMO(*cur.WeatherCode)
	} else {
		res.Condition, res.Description = weather.DescribeClouds(res.CloudsPercent)
	}

	return res, nil
}

// describeWMO maps a WMO 4677 weather interpretation code.
func describeWMO(code int) (weather.Condition, string) {
	switch code {
	case 0:
		return weather.ConditionClear, "clear sky"
	case 1:
		return weather.ConditionClear, "mainly clear"
	case 2:
		return weather.ConditionClouds, "partly cloudy"
	case 3:
		return weather.ConditionClouds, "overcast"
	case 45, 48:
		return weather.ConditionFog, "fog"
	case 51, 53, 55:
		return weather.ConditionDrizzle, "drizzle"
	case 56, 57:
		return weather.ConditionDrizzle, "freezing drizzle"
	case 61:
		return weather.ConditionRain, "slight rain"
	case 63:
		return weather.ConditionRain, "moderate rain"
	case 65:
		return weather.ConditionRain, "heavy rain"
	case 66, 67:
		return weather.ConditionRain, "freezing rain"
	case 71, 73, 75, 77:
		return weather.ConditionSnow, "snow"
	case 80, 81, 82:
		return weather.ConditionRain, "rain showers"
	case 85, 86:
		return weather.ConditionSnow, "snow showers"
	case 95:
		return weather.ConditionThunderstorm, "thunderstorm"
	case 96, 99:
		return weather.ConditionThunderstorm, "thunderstorm with hail"
	default:
		return weather.ConditionUnknown, "unknown"
	}
}

// Open-Meteo API response structures.

type forecastResponse struct {
	Error   bool   `json:"error"`
	Reason  string `json:"reason"`
	Current *struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
		Pressure    *float64 `json:"surface_pressure"`
		CloudCover  *float64 `json:"cloud_cover"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
}
