// Package meteostat fetches climate normals from the Meteostat JSON API.
package meteostat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/climate"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this climate provider.
	ProviderName = "meteostat"

	// DefaultBaseURL is the Meteostat API on RapidAPI.
	DefaultBaseURL = "https://meteostat.p.rapidapi.com"

	// rapidAPIHost is sent with every request.
	rapidAPIHost = "meteostat.p.rapidapi.com"

	// Normals reference period.
	normalsStart = 1991
	normalsEnd   = 2020
)

// ClientConfig holds configuration for the Meteostat client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Meteostat API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Meteostat client.
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

// RequiresCredential reports true; Meteostat needs a RapidAPI key.
func (c *Client) RequiresCredential() bool {
	return true
}

// GetClimate fetches the 1991-2020 monthly normals at the point.
func (c *Client) GetClimate(ctx context.Context, point geometry.Point, apiKey string) (*climate.Result, error) {
	if apiKey == "" {
		return nil, provider.ErrCredentialMissing
	}

	url := fmt.Sprintf("%s/point/normals?lat=%.4f&lon=%.4f&start=%d&end=%d",
		c.baseURL, point.Lat, point.Lon, normalsStart, normalsEnd)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	var resp normalsResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	return toResult(resp)
}

func toResult(resp normalsResponse) (*climate.Result, error) {
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no normals for location", provider.ErrEmptyResult)
	}

	var temps, precip [climate.MonthsPerYear]float64
	var seen [climate.MonthsPerYear]bool
	for _, n := range resp.Data {
		if n.Month < 1 || n.Month > climate.MonthsPerYear {
			return nil, fmt.Errorf("%w: month %d out of range", provider.ErrMalformed, n.Month)
		}
		if n.Tavg == nil {
			return nil, fmt.Errorf("%w: missing tavg for month %d", provider.ErrMalformed, n.Month)
		}
		m := n.Month - 1
		temps[m] = *n.Tavg
		if n.Prcp != nil {
			precip[m] = *n.Prcp
		}
		seen[m] = true
	}
	for m, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: missing normals for %s", provider.ErrMalformed, climate.MonthLabels[m])
		}
	}

	return climate.FromMonthly(temps, precip), nil
}

// Meteostat API response structures.

type normalsResponse struct {
	Meta struct {
		Generated string `json:"generated"`
	} `json:"meta"`
	Data []struct {
		Month int      `json:"month"`
		Tavg  *float64 `json:"tavg"`
		Tmin  *float64 `json:"tmin"`
		Tmax  *float64 `json:"tmax"`
		Prcp  *float64 `json:"prcp"`
	} `json:"data"`
}
