// Package handler provides HTTP handlers for the AreaLens API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/arealens/arealens/internal/api/models"
	"github.com/arealens/arealens/internal/api/response"
	"github.com/arealens/arealens/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler. The registry may be nil, in which
// case no providers are reported.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - data provider health.
// The service stays available while providers fail, so the status code is
// always 200 and degradation is reported in the body.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			ps := providerStatus(health)
			if ps.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(h *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      h.Name,
		Status:        models.HealthStatusOK,
		CircuitState:  circuitState(h.CircuitState),
		Successes:     h.Successes,
		Failures:      h.Failures,
		LastSuccessAt: models.TimestampPtr(h.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(h.LastFailureAt),
	}
	switch {
	case h.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case h.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	if h.LastError != "" && ps.Status != models.HealthStatusOK {
		msg := h.LastError
		ps.Message = &msg
	}
	return ps
}

func circuitState(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return "OPEN"
	case gobreaker.StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}
