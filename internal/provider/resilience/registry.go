package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a point-in-time view of a provider's health.
type ProviderHealth struct {
	// Name is the provider identifier.
	Name string

	// CircuitState is the breaker state of the provider's HTTP client.
	// Providers without a registered client report StateClosed.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics, when a client is registered.
	Counts gobreaker.Counts

	// Successes and Failures count chain attempts recorded for the provider.
	Successes uint64
	Failures  uint64

	// LastSuccessAt is the timestamp of the last successful attempt.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed attempt.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the breaker is closed and the last attempt did not fail.
func (h *ProviderHealth) IsHealthy() bool {
	if h.CircuitState != gobreaker.StateClosed {
		return false
	}
	if h.LastFailureAt == nil {
		return true
	}
	return h.LastSuccessAt != nil && h.LastSuccessAt.After(*h.LastFailureAt)
}

// IsDegraded returns true if the provider is half-open or its last attempt failed
// while the breaker is still closed.
func (h *ProviderHealth) IsDegraded() bool {
	return !h.IsHealthy() && !h.IsUnhealthy()
}

// IsUnhealthy returns true if the provider's breaker is open.
func (h *ProviderHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks providers and the outcome of their most recent attempts.
// It is safe for concurrent use by all chains of all requests.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*registeredProvider
	now       func() time.Time
}

type registeredProvider struct {
	client        *Client
	successes     uint64
	failures      uint64
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*registeredProvider),
		now:       time.Now,
	}
}

// Register adds a provider HTTP client to the registry. Registering a name
// that already has recorded attempts keeps its history.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.entry(name)
	p.client = client
}

// Unregister removes a provider from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
}

// RecordSuccess records a successful attempt. Unknown providers are added.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.entry(name)
	now := r.now()
	p.successes++
	p.lastSuccessAt = &now
}

// RecordFailure records a failed attempt. Unknown providers are added.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.entry(name)
	now := r.now()
	p.failures++
	p.lastFailureAt = &now
	if err != nil {
		p.lastError = err.Error()
	}
}

// entry returns the provider record, creating it. Callers hold the write lock.
func (r *Registry) entry(name string) *registeredProvider {
	p, ok := r.providers[name]
	if !ok {
		p = &registeredProvider{}
		r.providers[name] = p
	}
	return p
}

// GetHealth returns the health status of a specific provider, or nil if unknown.
func (r *Registry) GetHealth(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil
	}
	return p.health(name)
}

// GetAllHealth returns the health status of all providers sorted by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(r.providers))
	for name, p := range r.providers {
		health = append(health, p.health(name))
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}

// GetProviderNames returns the sorted names of all known providers.
func (r *Registry) GetProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderCount returns the number of known providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

func (p *registeredProvider) health(name string) *ProviderHealth {
	h := &ProviderHealth{
		Name:          name,
		CircuitState:  gobreaker.StateClosed,
		Successes:     p.successes,
		Failures:      p.failures,
		LastSuccessAt: p.lastSuccessAt,
		LastFailureAt: p.lastFailureAt,
		LastError:     p.lastError,
	}
	if p.client != nil {
		h.CircuitState = p.client.CircuitBreakerState()
		h.Counts = p.client.CircuitBreakerCounts()
	}
	return h
}
