package middleware

import (
	"log/slog"
	"net/http"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
)

// SessionHeader identifies the shopper's browsing session.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a logger enriched with the correlation, session and
// trace ids in the request context, for handlers to fetch with
// logger.FromContext. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sid := r.Header.Get(SessionHeader); sid != "" {
				ctx = logger.WithSessionID(ctx, sid)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
