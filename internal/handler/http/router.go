package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/health"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httputil"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "catalog"

// publicCacheSeconds is the browser cache lifetime of read endpoints.
const publicCacheSeconds = 30

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Service *service.CatalogService
	Health  *health.Handler
	// Metrics and Gatherer may be nil to skip HTTP metrics and /metrics.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
	// Tokens verifies bearer tokens on write routes. When nil the write
	// routes answer 503.
	Tokens middleware.TokenValidator
	// RateLimiter throttles /api/v1/catalog per client when set.
	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	catalogHandler := NewCatalogHandler(cfg.Service, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Service, cfg.Logger)

	r.Route("/api/v1/catalog", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(publicCacheSeconds))
			r.Get("/listings", catalogHandler.Search)
			r.Get("/listings/{id}", catalogHandler.GetListing)
			r.Get("/facets", catalogHandler.Facets)
			r.Get("/suggest", catalogHandler.Suggest)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/compare", catalogHandler.Compare)
			r.Post("/assistant", catalogHandler.Assistant)
		})

		r.Route("/sessions/{session_id}/filters", func(r chi.Router) {
			r.Use(middleware.CacheControl(0))
			r.Get("/", catalogHandler.GetSessionFilters)
			r.With(ContentTypeJSON).Put("/", catalogHandler.SaveSessionFilters)
			r.Delete("/", catalogHandler.ClearSessionFilters)
		})

		r.Group(func(r chi.Router) {
			if cfg.Tokens == nil {
				r.Use(writesDisabled)
			} else {
				r.Use(middleware.Auth(cfg.Tokens))
			}

			r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleVendor), ContentTypeJSON).
				Post("/listings", adminHandler.IndexListing)
			r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleVendor)).
				Delete("/listings/{id}", adminHandler.DeleteListing)
			r.With(middleware.RequireRole(auth.RoleAdmin), ContentTypeJSON).
				Post("/listings/bulk", adminHandler.BulkIndex)
			r.With(middleware.RequireRole(auth.RoleAdmin)).
				Post("/reindex", adminHandler.Reindex)
		})
	})

	return r
}

// ContentTypeJSON rejects bodies that are not declared as JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct != "" && !isJSON(ct) {
			httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isJSON(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

func writesDisabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "SERVICE_UNAVAILABLE", Message: "catalog writes are disabled: no JWT secret configured"},
		})
	})
}
