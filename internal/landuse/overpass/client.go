// Package overpass counts OpenStreetMap land-use features inside a polygon
// through the Overpass API.
package overpass

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goverpass "github.com/cwbudde/go-overpass"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/landuse"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const (
	// ProviderName identifies this land-use provider.
	ProviderName = "overpass"

	// DefaultEndpoint is the main public Overpass instance.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	// DefaultQueryTimeout is the server-side timeout, in seconds, sent with each query.
	DefaultQueryTimeout = 25

	// maxParallel bounds concurrent queries per client; public instances
	// allow two slots per IP.
	maxParallel = 2
)

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// Endpoint is the interpreter URL (optional).
	Endpoint string

	// QueryTimeout is the [timeout:] setting in seconds (optional).
	QueryTimeout int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass API land-use client.
type Client struct {
	overpass     goverpass.Client
	queryTimeout int
	logger       zerolog.Logger
}

// NewClient creates a new Overpass client.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout == 0 {
		queryTimeout = DefaultQueryTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	c := &Client{
		overpass:     goverpass.NewWithSettings(endpoint, maxParallel, httpClient),
		queryTimeout: queryTimeout,
		logger:       cfg.Logger,
	}
	// Retries belong to the resilience client and the source chain.
	c.overpass.SetRetryConfig(goverpass.RetryConfig{})
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// RequiresCredential reports false; Overpass is open.
func (c *Client) RequiresCredential() bool {
	return false
}

// GetLandUse classifies every landuse, natural and waterway way or relation
// inside the polygon and converts the counts to percentages.
func (c *Client) GetLandUse(ctx context.Context, polygon geometry.Polygon, _ string) (*landuse.Result, error) {
	if len(polygon.Ring) < geometry.MinRingVertices {
		return nil, fmt.Errorf("%w: polygon has fewer than %d vertices", provider.ErrEmptyResult, geometry.MinRingVertices)
	}

	result, err := c.query(ctx, BuildQuery(polygon.Ring, c.queryTimeout))
	if err != nil {
		return nil, err
	}

	var counts landuse.Counts
	for _, w := range result.Ways {
		counts.Add(landuse.ClassifyTags(w.Tags))
	}
	for _, r := range result.Relations {
		counts.Add(landuse.ClassifyTags(r.Tags))
	}

	c.logger.Debug().
		Int("ways", len(result.Ways)).
		Int("relations", len(result.Relations)).
		Int("classified", counts.Total()).
		Msg("overpass land-use elements received")

	return landuse.FromCounts(counts)
}

// query runs q under ctx. Cancellation aborts the HTTP request and frees the
// library's parallelism slot.
func (c *Client) query(ctx context.Context, q string) (goverpass.Result, error) {
	result, err := c.overpass.QueryContext(ctx, q)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return goverpass.Result{}, ctxErr
		}
		return goverpass.Result{}, fmt.Errorf("%w: overpass query: %w", provider.ErrUnavailable, err)
	}
	return result, nil
}

// BuildQuery returns the Overpass QL query for land-use ways and relations
// inside the ring.
func BuildQuery(ring geometry.Ring, timeoutSeconds int) string {
	poly := polyFilter(ring)

	var b strings.Builder
	b.WriteString("[out:json][timeout:")
	b.WriteString(strconv.Itoa(timeoutSeconds))
	b.WriteString("];\n(\n")
	for _, elem := range []string{"way", "relation"} {
		for _, key := range []string{"landuse", "natural", "waterway"} {
			fmt.Fprintf(&b, "  %s[%q](poly:%q);\n", elem, key, poly)
		}
	}
	b.WriteString(");\nout tags;")
	return b.String()
}

// polyFilter renders the ring as the space separated "lat lon" list used by
// the poly: filter.
func polyFilter(ring geometry.Ring) string {
	parts := make([]string, 0, 2*len(ring))
	for _, p := range ring.Open() {
		parts = append(parts,
			strconv.FormatFloat(p.Lat, 'f', 6, 64),
			strconv.FormatFloat(p.Lon, 'f', 6, 64),
		)
	}
	return strings.Join(parts, " ")
}
