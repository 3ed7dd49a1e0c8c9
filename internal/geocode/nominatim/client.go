// Package nominatim resolves coordinates to countries with the OpenStreetMap
// Nominatim reverse geocoder.
package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoder.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// countryZoom limits reverse lookups to country-level detail.
	countryZoom = 3
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the Nominatim base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim reverse geocoding client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
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
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// CountryCode returns the upper-case ISO 3166-1 alpha-2 code of the country
// containing the point. Points outside any country yield provider.ErrEmptyResult.
func (c *Client) CountryCode(ctx context.Context, lat, lon float64) (string, error) {
	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f&zoom=%d&addressdetails=1",
		c.baseURL, lat, lon, countryZoom)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept-Language", "en")

	var resp reverseResponse
	if err := c.httpClient.FetchJSON(ctx, req, &resp); err != nil {
		return "", err
	}

	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", provider.ErrEmptyResult, resp.Error)
	}

	code := strings.ToUpper(strings.TrimSpace(resp.Address.CountryCode))
	if code == "" {
		return "", fmt.Errorf("%w: no country code at %.4f,%.4f", provider.ErrEmptyResult, lat, lon)
	}

	c.logger.Debug().
		Str("country", code).
		Str("display_name", resp.DisplayName).
		Msg("reverse geocoded centroid")

	return code, nil
}

// Nominatim API response structures.

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}
