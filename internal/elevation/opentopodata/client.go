// Package opentopodata looks up terrain elevation with the OpenTopoData API.
package opentopodata

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
	ProviderName = "opentopodata"

	// DefaultBaseURL is the public OpenTopoData API.
	DefaultBaseURL = "https://api.opentopodata.org/v1"

	// DefaultDataset is the near-global SRTM dataset.
	DefaultDataset = "srtm90m"
)

// ClientConfig holds configuration for the OpenTopoData client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// Dataset is the elevation dataset to query (optional).
	Dataset string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenTopoData client.
type Client struct {
	baseURL    string
	dataset    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenTopoData client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = DefaultDataset
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		dataset:    dataset,
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

// GetElevation returns the dataset elevation at the point. Points outside the
// dataset's coverage come back as null and yield provider.ErrEmptyResult.
func (c *Client) GetElevation(ctx context.Context, point geometry.Point, _ string) (*elevation.Result, error) {
	url := fmt.Sprintf("%s/%s?locations=%.6f,%.6f", c.baseURL, c.dataset, point.Lat, point.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp lookupResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s: %s", provider.ErrUnavailable, resp.Status, resp.Error)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: no results", provider.ErrMalformed)
	}
	if resp.Results[0].Elevation == nil {
		return nil, fmt.Errorf("%w: %s has no coverage at %.4f,%.4f", provider.ErrEmptyResult, c.dataset, point.Lat, point.Lon)
	}

	return elevation.Meters(*resp.Results[0].Elevation), nil
}

// OpenTopoData API response structures.

type lookupResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Results []struct {
		Dataset   string   `json:"dataset"`
		Elevation *float64 `json:"elevation"`
		Location  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"results"`
}
