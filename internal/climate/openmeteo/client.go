// Package openmeteo builds a monthly climate profile from the Open-Meteo
// historical weather archive.
package openmeteo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/climate"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this climate provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo archive API endpoint.
	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	// DefaultReferenceYear is the calendar year folded into monthly values.
	DefaultReferenceYear = 2023
)

// ClientConfig holds configuration for the Open-Meteo climate client.
type ClientConfig struct {
	// BaseURL is the archive API URL (optional).
	BaseURL string

	// ReferenceYear is the year of daily data to aggregate (optional).
	ReferenceYear int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo archive client.
type Client struct {
	baseURL       string
	referenceYear int
	httpClient    *resilience.Client
	logger        zerolog.Logger
}

// NewClient creates a new Open-Meteo climate client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	year := cfg.ReferenceYear
	if year == 0 {
		year = DefaultReferenceYear
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:       baseURL,
		referenceYear: year,
		httpClient:    httpClient,
		logger:        cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// RequiresCredential reports false; the archive API is open.
func (c *Client) RequiresCredential() bool {
	return false
}

// GetClimate fetches a year of daily means and folds them into monthly mean
// temperature and total precipitation.
func (c *Client) GetClimate(ctx context.Context, point geometry.Point, _ string) (*climate.Result, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%d-01-01&end_date=%d-12-31&daily=temperature_2m_mean,precipitation_sum&timezone=UTC",
		c.baseURL, point.Lat, point.Lon, c.referenceYear, c.referenceYear)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp archiveResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Reason)
	}

	return foldDaily(resp.Daily)
}

// foldDaily averages temperatures and sums precipitation per calendar month.
// Null readings are skipped; a month without any temperature reading fails.
func foldDaily(d dailySeries) (*climate.Result, error) {
	if len(d.Time) == 0 {
		return nil, fmt.Errorf("%w: no daily values", provider.ErrEmptyResult)
	}
	if len(d.Temperature) != len(d.Time) || len(d.Precipitation) != len(d.Time) {
		return nil, fmt.Errorf("%w: daily series lengths differ", provider.ErrMalformed)
	}

	var tempSum, precipSum [climate.MonthsPerYear]float64
	var tempDays [climate.MonthsPerYear]int
	for i, day := range d.Time {
		t, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing date %q: %w", provider.ErrMalformed, day, err)
		}
		m := int(t.Month()) - 1
		if v := d.Temperature[i]; v != nil {
			tempSum[m] += *v
			tempDays[m]++
		}
		if v := d.Precipitation[i]; v != nil {
			precipSum[m] += *v
		}
	}

	var temps [climate.MonthsPerYear]float64
	for m := range climate.MonthsPerYear {
		if tempDays[m] == 0 {
			return nil, fmt.Errorf("%w: no temperature readings for %s", provider.ErrMalformed, climate.MonthLabels[m])
		}
		temps[m] = tempSum[m] / float64(tempDays[m])
	}

	return climate.FromMonthly(temps, precipSum), nil
}

// Open-Meteo API response structures.

type archiveResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Error     bool        `json:"error"`
	Reason    string      `json:"reason"`
	Daily     dailySeries `json:"daily"`
}

type dailySeries struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m_mean"`
	Precipitation []*float64 `json:"precipitation_sum"`
}
