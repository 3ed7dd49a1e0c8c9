package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/arealens/arealens/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// AnalyzeRateLimit applies to full analyses, which fan out to every
	// provider (20 req/min).
	AnalyzeRateLimit = RateLimitConfig{RequestLimit: 20, WindowLength: time.Minute}

	// StandardRateLimit applies to geometry-only endpoints (120 req/min).
	StandardRateLimit = RateLimitConfig{RequestLimit: 120, WindowLength: time.Minute}
)

// RateLimitByIP limits requests per client IP. Run chi's RealIP middleware
// first when behind a proxy.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.WindowLength.Seconds())))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
			problem.Instance = r.URL.Path
			w.Header().Set("Retry-After", retryAfter)
			problem.Write(w)
		}),
	)
}
