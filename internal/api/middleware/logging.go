package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger logs one line per request and stores a request-scoped logger in the
// context, retrievable with zerolog.Ctx. Server errors log at error level and
// client errors at warn.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			fields := log.With().Str("request_id", GetRequestID(r.Context()))
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				fields = fields.
					Str("trace_id", sc.TraceID().String()).
					Str("span_id", sc.SpanID().String())
			}
			reqLog := fields.Logger()

			rec := recordStatus(w)
			next.ServeHTTP(rec, r.WithContext(reqLog.WithContext(r.Context())))

			var event *zerolog.Event
			switch {
			case rec.status >= http.StatusInternalServerError:
				event = reqLog.Error()
			case rec.status >= http.StatusBadRequest:
				event = reqLog.Warn()
			default:
				event = reqLog.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int64("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("request completed")
		})
	}
}
