package middleware

import (
	"net/http"

	"github.com/arealens/arealens/internal/api/models"
)

// securityHeaders are set on every response. The API serves only JSON, so the
// content security policy forbids everything.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
}

// SecurityHeaders adds standard security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range securityHeaders {
			w.Header().Set(h[0], h[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects requests whose X-Forwarded-Proto, as set by the load
// balancer, is present and not https. Disabled, it passes everything through.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
				problem := models.NewProblem(models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden, GetRequestID(r.Context()))
				problem.Detail = "This endpoint requires HTTPS"
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
