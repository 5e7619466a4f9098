package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
)

// CorrelationHeader carries the request id in and out of the service.
const CorrelationHeader = "X-Correlation-ID"

// RequestLogging assigns a correlation id (reusing the caller's when sent)
// and logs one line per request. Health and scrape paths log at debug.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(CorrelationHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx := logger.WithCorrelationID(r.Context(), id)
			w.Header().Set(CorrelationHeader, id)

			sr := newStatusRecorder(w)
			next.ServeHTTP(sr, r.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case sr.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case isInfraPath(r.URL.Path):
				level = slog.LevelDebug
			}

			l.Log(ctx, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", sr.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", sr.bytes),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("correlation_id", id),
			)
		})
	}
}

func isInfraPath(p string) bool {
	return strings.HasPrefix(p, "/health") || p == "/metrics"
}
