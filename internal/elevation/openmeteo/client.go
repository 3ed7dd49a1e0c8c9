// Package openmeteo looks up terrain elevation with the Open-Meteo elevation API.
package openmeteo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/elevation"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this elevation provider.
	ProviderName = "open-meteo-elevation"

	// DefaultBaseURL is the Open-Meteo elevation endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/elevation"
)

// ClientConfig holds configuration for the Open-Meteo elevation client.
type ClientConfig struct {
	// BaseURL is the elevation API URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo elevation client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo elevation client.
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

// GetElevation returns the 90m DEM elevation at the point.
func (c *Client) GetElevation(ctx context.Context, point geometry.Point, _ string) (*elevation.Result, error) {
	url := fmt.Sprintf("%s?latitude=%.6f&longitude=%.6f", c.baseURL, point.Lat, point.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp elevationResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Reason)
	}
	if len(resp.Elevation) == 0 || resp.Elevation[0] == nil {
		return nil, fmt.Errorf("%w: no elevation returned", provider.ErrEmptyResult)
	}

	return elevation.Meters(*resp.Elevation[0]), nil
}

// Open-Meteo API response structures.

type elevationResponse struct {
	Elevation []*float64 `json:"elevation"`
	Error     bool       `json:"error"`
	Reason    string     `json:"reason"`
}
