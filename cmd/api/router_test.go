package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/repairshop-api/internal/auth"
	"github.com/noah-isme/repairshop-api/internal/bundle"
	"github.com/noah-isme/repairshop-api/internal/catalog"
	"github.com/noah-isme/repairshop-api/internal/config"
	"github.com/noah-isme/repairshop-api/internal/health"
	"github.com/noah-isme/repairshop-api/internal/ratelimit"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

func newTestRouter(t *testing.T, rate string) (http.Handler, *auth.Verifier) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		BodyLimitBytes: 1 << 10,
		IdempotencyTTL: time.Minute,
		MetricsEnabled: true,
		ServiceName:    "repairshop-api",
	}
	verifier, err := auth.NewVerifier(auth.Config{Secret: "router-secret"})
	require.NoError(t, err)
	limiter, err := ratelimit.New(nil, "test", rate)
	require.NoError(t, err)

	return newRouter(routerDeps{
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Limiter:  limiter,
		Verifier: verifier,
		Health:   health.Handler{},
		Catalog:  catalog.NewHandler(catalog.HandlerConfig{}),
		Bundles:  bundle.NewHandler(bundle.HandlerConfig{}),
		Tax:      tax.NewHandler(tax.HandlerConfig{}),
	}), verifier
}

func call(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, "100-M")

	rec := call(h, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	require.Equal(t, http.StatusOK, call(h, http.MethodGet, "/metrics", "").Code)
	require.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/debug/pprof/", "").Code)
}

func TestRouterAdminRequiresToken(t *testing.T) {
	h, verifier := newTestRouter(t, "100-M")

	require.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/api/v1/admin/locations", "").Code)
	require.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/api/v1/admin/bundles", "garbage").Code)

	clerk, err := verifier.Issue("clerk-1", []string{"clerk"}, time.Minute)
	require.NoError(t, err)
	rec := call(h, http.MethodGet, "/api/v1/admin/locations", clerk)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "catalog service not configured")
	require.Equal(t, http.StatusInternalServerError, call(h, http.MethodGet, "/api/v1/admin/bundles", clerk).Code)
	require.Equal(t, http.StatusForbidden, call(h, http.MethodGet, "/api/v1/admin/tax/rates", clerk).Code)

	accountant, err := verifier.Issue("acct-1", []string{"accountant"}, time.Minute)
	require.NoError(t, err)
	rec = call(h, http.MethodGet, "/api/v1/admin/tax/rates", accountant)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "tax service not configured")
}

func TestRouterRateLimitsPerCaller(t *testing.T) {
	h, verifier := newTestRouter(t, "2-M")
	token, err := verifier.Issue("staff-1", []string{"admin"}, time.Minute)
	require.NoError(t, err)
	other, err := verifier.Issue("staff-2", []string{"admin"}, time.Minute)
	require.NoError(t, err)

	for range 2 {
		require.NotEqual(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/api/v1/admin/locations", token).Code)
	}
	require.Equal(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/api/v1/admin/locations", token).Code)
	require.NotEqual(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/api/v1/admin/locations", other).Code)
}
