package main

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/noah-isme/repairshop-api/internal/auth"
	"github.com/noah-isme/repairshop-api/internal/bundle"
	"github.com/noah-isme/repairshop-api/internal/catalog"
	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/config"
	"github.com/noah-isme/repairshop-api/internal/health"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/ratelimit"
	"github.com/noah-isme/repairshop-api/internal/security"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

// Roles allowed to touch tax rates, records and payments.
var taxRoles = []string{"admin", "accountant"}

type routerDeps struct {
	Config      *config.Config
	Logger      zerolog.Logger
	HTTPMetrics *obs.HTTPMetrics
	Redis       *redis.Client
	Limiter     *limiter.Limiter
	Verifier    *auth.Verifier
	Health      health.Handler

	Catalog *catalog.Handler
	Bundles *bundle.Handler
	Tax     *tax.Handler
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.TracingEnabled {
		r.Use(obs.Tracing(cfg.ServiceName))
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(security.Headers{EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", common.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	authMiddleware := auth.Middleware{Verifier: d.Verifier, Logger: obs.Component(d.Logger, "auth")}
	limit := ratelimit.Handler{
		Limiter: d.Limiter,
		OnError: func(err error) { d.Logger.Warn().Err(err).Msg("rate limiter store unavailable") },
	}

	r.Route("/api/v1/admin", func(admin chi.Router) {
		admin.Use(authMiddleware.RequireAuth)
		if d.Limiter != nil {
			admin.Use(limit.Middleware)
		}
		admin.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		admin.Use(common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL}.Middleware)

		if d.Catalog != nil {
			admin.Group(d.Catalog.Routes)
		}
		if d.Bundles != nil {
			admin.Route("/bundles", d.Bundles.Routes)
		}
		if d.Tax != nil {
			admin.Route("/tax", func(t chi.Router) {
				t.Use(auth.RequireRole(taxRoles...))
				d.Tax.Routes(t)
			})
		}
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	if user == "" {
		return http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
