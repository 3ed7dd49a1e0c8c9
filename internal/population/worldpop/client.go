// Package worldpop queries the WorldPop zonal statistics service for the
// population living inside a polygon.
package worldpop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/population"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this population provider.
	ProviderName = "worldpop"

	// DefaultBaseURL is the WorldPop stats service endpoint.
	DefaultBaseURL = "https://api.worldpop.org/v1/services/stats"

	// DefaultDataset is the global per-country population dataset.
	DefaultDataset = "wpgppop"

	// DefaultYear is the most recent year of the default dataset.
	DefaultYear = 2020
)

// ClientConfig holds configuration for the WorldPop client.
type ClientConfig struct {
	// BaseURL is the stats service URL (optional).
	BaseURL string

	// Dataset and Year select the raster to aggregate (optional).
	Dataset string
	Year    int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a WorldPop stats API client.
type Client struct {
	baseURL    string
	dataset    string
	year       int
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new WorldPop client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = DefaultDataset
	}
	year := cfg.Year
	if year == 0 {
		year = DefaultYear
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		dataset:    dataset,
		year:       year,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// RequiresCredential reports false; the stats service is open.
func (c *Client) RequiresCredential() bool {
	return false
}

// GetPopulation sums the population raster over the polygon.
func (c *Client) GetPopulation(ctx context.Context, polygon geometry.Polygon, _ string) (*population.Result, error) {
	fc := geometry.ToFeatureCollection(polygon.Ring)
	if fc == nil {
		return nil, fmt.Errorf("%w: polygon has fewer than %d vertices", provider.ErrEmptyResult, geometry.MinRingVertices)
	}
	body, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encoding geojson: %w", err)
	}

	q := url.Values{}
	q.Set("dataset", c.dataset)
	q.Set("year", strconv.Itoa(c.year))
	q.Set("geojson", string(body))
	q.Set("runasync", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp statsResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	if resp.Error {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.ErrorMessage)
	}
	if resp.Status != "finished" || resp.Data == nil || resp.Data.TotalPopulation == nil {
		return nil, fmt.Errorf("%w: task status %q without total_population", provider.ErrMalformed, resp.Status)
	}

	c.logger.Debug().
		Float64("total_population", *resp.Data.TotalPopulation).
		Str("dataset", c.dataset).
		Msg("worldpop stats received")

	return population.FromCount(polygon.Metrics.AreaSquareKilometers(), *resp.Data.TotalPopulation), nil
}

// WorldPop API response structures.

type statsResponse struct {
	Status       string `json:"status"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	TaskID       string `json:"taskid"`
	Data         *struct {
		TotalPopulation *float64 `json:"total_population"`
	} `json:"data"`
}
