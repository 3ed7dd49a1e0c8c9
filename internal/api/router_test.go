package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api"
	"github.com/arealens/arealens/internal/api/models"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const squareBody = `{"ring":[{"lat":52.0,"lon":4.0},{"lat":52.0,"lon":4.01},{"lat":52.01,"lon":4.01},{"lat":52.01,"lon":4.0}]}`

// newTestRouter builds a router whose analysis service has no providers, so
// every category is estimated and no network is touched.
func newTestRouter(t *testing.T, opts ...func(*api.RouterConfig)) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)
	registry := resilience.NewRegistry()

	cfg := api.RouterConfig{
		Version:   "test",
		BuildTime: "2024-01-01T00:00:00Z",
		Logger:    logger,
		Analyzer: analysis.NewService(analysis.Config{
			Registry: registry,
			Logger:   logger,
		}),
		Registry: registry,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return api.NewRouter(cfg)
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
}

func TestRouter_AnalyzeArea(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(router, "/v1/areas:analyze", squareBody)

	require.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)

	var result struct {
		RequestID  string                               `json:"requestId"`
		Metrics    map[string]any                       `json:"metrics"`
		Population map[string]any                       `json:"population"`
		LandUse    map[string]any                       `json:"landUse"`
		Climate    map[string]any                       `json:"climate"`
		Elevation  map[string]any                       `json:"elevation"`
		Weather    map[string]any                       `json:"weather"`
		Provenance map[analysis.Category]map[string]any `json:"provenance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, requestID, result.RequestID)
	assert.NotEmpty(t, result.Metrics)
	assert.NotEmpty(t, result.Population)
	assert.NotEmpty(t, result.LandUse)
	assert.NotEmpty(t, result.Climate)
	assert.NotEmpty(t, result.Elevation)
	assert.NotEmpty(t, result.Weather)
	for _, c := range analysis.Categories {
		require.Contains(t, result.Provenance, c)
		assert.Equal(t, true, result.Provenance[c]["estimated"])
	}
}

func TestRouter_AreaMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(router, "/v1/areas:metrics", squareBody)

	require.Equal(t, http.StatusOK, w.Code)
	var m models.AreaMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 4, m.VertexCount)
	assert.Greater(t, m.AreaSquareKilometers, 0.0)
}

func TestRouter_AreaGeoJSON(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(router, "/v1/areas:geojson", squareBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"Polygon"`)
}

func TestRouter_AnalyzeArea_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(router, "/v1/areas:analyze", `{"ring":[{"lat":95,"lon":4}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Equal(t, "/v1/areas:analyze", problem.Instance)
	assert.Equal(t, w.Header().Get("X-Request-Id"), problem.TraceID)
}

func TestRouter_UnsupportedMediaType(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/areas:metrics", strings.NewReader(squareBody))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.True(t, strings.HasPrefix(w.Header().Get("X-Request-Id"), "req_"))
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "req_custom123")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "req_custom123", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/areas:analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeMethodNotAllowed, problem.Type)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouter_RequireTLS(t *testing.T) {
	router := newTestRouter(t, func(cfg *api.RouterConfig) { cfg.RequireTLS = true })

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AnalyzeRateLimited(t *testing.T) {
	router := newTestRouter(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 21; i++ {
		last = postJSON(router, "/v1/areas:analyze", `{"ring":[]}`)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	// Geometry endpoints have their own, larger budget.
	w := postJSON(router, "/v1/areas:metrics", squareBody)
	assert.Equal(t, http.StatusOK, w.Code)
}
