package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/api/models"
)

// Recovery turns a handler panic into a 500 problem response.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				problem := models.NewInternalError(requestID, "an unexpected error occurred")
				problem.Instance = r.URL.Path
				problem.Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
