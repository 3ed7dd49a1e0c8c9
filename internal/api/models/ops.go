package models

// Health is the liveness response.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatus summarises provider health.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Providers []ProviderStatus `json:"providers"`
}

// ProviderStatus is the health of one data provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	Successes     uint64       `json:"successes"`
	Failures      uint64       `json:"failures"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
