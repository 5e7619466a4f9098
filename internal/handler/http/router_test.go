package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	redisrepo "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository/redis"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/health"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	engine  *memory.Engine
	tokens  *auth.Manager
}

func int64p(v int64) *int64 { return &v }

func fixtures() []domain.Listing {
	return []domain.Listing{
		{ID: "v-1", Kind: domain.KindVendor, Name: "Wuse Fashion House", Category: "Fashion", Location: "Wuse", Price: 15000, Rating: 4.8, ReviewCount: 342, Verified: true, InStock: true},
		{ID: "v-2", Kind: domain.KindVendor, Name: "Garki Gadgets", Category: "Electronics", Location: "Garki", Price: 25000, Rating: 4.6, ReviewCount: 528, Verified: true, InStock: true},
		{ID: "p-1", Kind: domain.KindProduct, VendorID: "v-1", Name: "Ankara Gown", Category: "Fashion", Location: "Wuse", Price: 18500, OriginalPrice: int64p(25000), Rating: 4.8, ReviewCount: 120, InStock: true},
		{ID: "p-2", Kind: domain.KindProduct, VendorID: "v-2", Name: "Android Phone", Category: "Electronics", Location: "Garki", Price: 145000, Rating: 4.5, ReviewCount: 310, InStock: true},
		{ID: "p-3", Kind: domain.KindProduct, VendorID: "v-2", Name: "Wireless Earbuds", Category: "Electronics", Location: "Garki", Price: 12000, Rating: 4.2, ReviewCount: 198},
	}
}

func newTestServer(t *testing.T, withTokens bool) *testServer {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	eng := memory.New()
	svc := service.NewCatalogService(service.Deps{
		Engine:  eng,
		Filters: redisrepo.NewFilterStateStore(client, time.Hour),
		Logger:  logger,
	})
	_, err := svc.Seed(context.Background(), fixtures())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	cfg := RouterConfig{
		Service:  svc,
		Health:   health.NewHandler(),
		Metrics:  middleware.NewHTTPMetrics(ServiceName, reg),
		Gatherer: reg,
		CORS:     middleware.DefaultCORSConfig(),
		Logger:   logger,
	}
	ts := &testServer{engine: eng}
	if withTokens {
		ts.tokens, err = auth.NewManager("test-secret")
		require.NoError(t, err)
		cfg.Tokens = ts.tokens.Validator()
	}
	ts.handler = NewRouter(cfg)
	return ts
}

func (ts *testServer) token(t *testing.T, role, vendorID string) string {
	t.Helper()
	tok, err := ts.tokens.Mint("user-1", role, vendorID, time.Hour)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, target string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t, false)

	w, _ := ts.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MetricsAfterTraffic(t *testing.T) {
	ts := newTestServer(t, false)
	ts.do(t, http.MethodGet, "/api/v1/catalog/listings", nil, "")

	w, _ := ts.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/v1/catalog/listings"`)
}

func TestRouter_PprofRefusedWithoutAllowlist(t *testing.T) {
	ts := newTestServer(t, false)
	w, _ := ts.do(t, http.MethodGet, "/debug/pprof/", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_WritesDisabledWithoutSecret(t *testing.T) {
	ts := newTestServer(t, false)
	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/reindex", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
}

func TestRouter_RejectsNonJSONBodies(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/compare", bytes.NewBufferString("ids=p-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_RateLimitsCatalogRoutes(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	svc := service.NewCatalogService(service.Deps{Engine: memory.New(), Logger: logger})
	h := NewRouter(RouterConfig{
		Service:     svc,
		Health:      health.NewHandler(),
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimitConfig{RPS: 0.01, Burst: 2}, logger),
		CORS:        middleware.DefaultCORSConfig(),
		Logger:      logger,
	})

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.7:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("/api/v1/catalog/listings"))
	assert.Equal(t, http.StatusOK, get("/api/v1/catalog/facets"))
	assert.Equal(t, http.StatusTooManyRequests, get("/api/v1/catalog/listings"))
	assert.Equal(t, http.StatusOK, get("/health/live"), "infra routes are not limited")
}
