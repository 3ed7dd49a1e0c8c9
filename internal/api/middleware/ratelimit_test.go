package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arealens/arealens/internal/api/middleware"
)

func limitedHandler(cfg middleware.RateLimitConfig) http.Handler {
	return middleware.RequestID(
		middleware.RateLimitByIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)
}

func hit(handler http.Handler, remoteAddr, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, http.NoBody)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 3, WindowLength: time.Minute})

	for i := range 3 {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:12345", "/v1/areas:analyze").Code, "request %d", i+1)
	}

	rec := hit(handler, "10.0.0.1:12345", "/v1/areas:analyze")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_RetryAfterFollowsWindow(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: 90 * time.Second})

	hit(handler, "10.0.0.9:1", "/")
	rec := hit(handler, "10.0.0.9:1", "/")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_DifferentIPsHaveSeparateLimits(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})

	for range 2 {
		assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:12345", "/").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "172.16.0.1:12345", "/").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.2:12345", "/").Code)
}

func TestRateLimitExceededResponse_Format(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute})

	assert.Equal(t, http.StatusOK, hit(handler, "203.0.113.1:12345", "/v1/areas:analyze").Code)
	rec := hit(handler, "203.0.113.1:12345", "/v1/areas:analyze")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, "/v1/areas:analyze")
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 20, middleware.AnalyzeRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.AnalyzeRateLimit.WindowLength)
	assert.Equal(t, 120, middleware.StandardRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.StandardRateLimit.WindowLength)
}
