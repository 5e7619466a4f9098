package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httputil"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
)

type authKey int

const claimsKey authKey = iota

// Claims are the caller attributes the catalog cares about once a bearer
// token has been verified.
type Claims struct {
	Subject  string `json:"sub"`
	Role     string `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
}

// TokenValidator verifies a raw bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeDenied(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed bearer token")
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeDenied(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = logger.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole only lets through callers whose role is one of roles.
// It must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[ClaimsFromContext(r.Context()).Role]; !ok {
				writeDenied(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the verified claims, or an empty value for
// anonymous requests.
func ClaimsFromContext(ctx context.Context) Claims {
	if c, ok := ctx.Value(claimsKey).(*Claims); ok && c != nil {
		return *c
	}
	return Claims{}
}

// WithClaims stores claims in ctx. Handlers under test use it in place of Auth.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, &c)
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeDenied(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}
