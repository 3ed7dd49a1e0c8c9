// Package openweathermap fetches current conditions from the OpenWeatherMap API.
package openweathermap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client. The API key is passed per call.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
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

// RequiresCredential reports true; every call needs an appid.
func (c *Client) RequiresCredential() bool {
	return true
}

// GetCurrentWeather fetches current weather for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, point geometry.Point, apiKey string) (*weather.Result, error) {
	if apiKey == "" {
		return nil, provider.ErrCredentialMissing
	}

	reqURL := fmt.Sprintf("%s/weather?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		c.baseURL, point.Lat, point.Lon, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var owmResp currentWeatherResponse
	if err := c.httpClient.FetchJSON(ctx, req, &owmResp); err != nil {
		return nil, err
	}

	return toResult(&owmResp), nil
}

// toResult converts OpenWeatherMap response to domain model.
func toResult(resp *currentWeatherResponse) *weather.Result {
	res := &weather.Result{
		TemperatureC:    resp.Main.Temp,
		HumidityPercent: resp.Main.Humidity,
		WindSpeedMs:     resp.Wind.Speed,
		PressureHpa:     resp.Main.Pressure,
		CloudsPercent:   resp.Clouds.All,
	}

	if len(resp.Weather) > 0 {
		res.Condition = mapCondition(resp.Weather[0].Main)
		res.Description = resp.Weather[0].Description
	} else {
		res.Condition, res.Description = weather.DescribeClouds(resp.Clouds.All)
	}

	return res
}

// mapCondition maps OpenWeatherMap condition to domain condition.
func mapCondition(owmCondition string) weather.Condition {
	switch owmCondition {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Thunderstorm":
		return weather.ConditionThunderstorm
	case "Snow":
		return weather.ConditionSnow
	case "Mist":
		return weather.ConditionMist
	case "Fog":
		return weather.ConditionFog
	case "Haze", "Dust", "Sand", "Ash", "Squall", "Tornado":
		return weather.ConditionHaze
	default:
		return weather.ConditionUnknown
	}
}

// OpenWeatherMap API response structures.

type currentWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}
