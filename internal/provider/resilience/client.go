package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/arealens/arealens/internal/provider"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// maxErrorBody bounds how much of a failed response body is kept for logs.
const maxErrorBody = 512

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming and the registry.
	Name string

	// Timeout bounds each individual HTTP attempt.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retries.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 2 seconds
	MaxInterval time.Duration

	// UserAgent is sent with every request. Some open data services
	// (Nominatim, Overpass) reject anonymous clients.
	UserAgent string

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry, if set, registers the client for health reporting.
	Registry *Registry

	// Transport overrides the HTTP transport (optional).
	Transport http.RoundTripper
}

// DefaultUserAgent identifies the service to upstream providers.
const DefaultUserAgent = "arealens/1.0 (+https://github.com/arealens/arealens)"

// DefaultClientConfig returns the defaults used for data provider clients.
// A single retry fits inside the source chain's per-attempt timeout.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      1,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		UserAgent:       DefaultUserAgent,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry logic.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}
	cb := NewCircuitBreaker[*http.Response](cbConfig) //nolint:bodyclose // type param, not response

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		circuitBreaker: cb,
		config:         cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.config.Name
}

// Do executes an HTTP request with circuit breaker protection and retry logic.
// Transient failures (5xx, network errors) are retried with exponential backoff.
// Returns immediately with ErrCircuitOpen if the circuit breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries and ctx

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response
	operation := func() error {
		// 5xx responses are returned as errors so they count against the breaker.
		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller is responsible for closing
			r, err := c.httpClient.Do(cloneRequest(ctx, req))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if lastResp != nil {
				lastResp.Body.Close()
			}
			lastResp = resp
			return err
		}
		if lastResp != nil {
			lastResp.Body.Close()
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted retries is handed back so the caller sees the status.
		var serverErr *ServerError
		if lastResp != nil && errors.As(err, &serverErr) {
			return lastResp, nil
		}
		if lastResp != nil {
			lastResp.Body.Close()
		}
		return nil, err
	}
	return lastResp, nil
}

// FetchJSON executes the request and decodes a 200 response body into out.
// Failures are wrapped in the provider taxonomy: transport errors and non-200
// statuses as provider.ErrUnavailable, undecodable bodies as provider.ErrMalformed.
func (c *Client) FetchJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: executing request: %w", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", provider.ErrMalformed, err)
	}
	return nil
}

// cloneRequest copies the request for a retry attempt. Bodies are re-read
// through GetBody when the request provides it.
func cloneRequest(ctx context.Context, req *http.Request) *http.Request {
	clone := req.Clone(ctx)
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		}
	}
	return clone
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// StatusError is returned by FetchJSON for any non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Unwrap classifies every non-200 status as unavailability.
func (e *StatusError) Unwrap() error {
	return provider.ErrUnavailable
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
