package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/repairshop-api/internal/app"
	"github.com/noah-isme/repairshop-api/internal/auth"
	"github.com/noah-isme/repairshop-api/internal/bundle"
	"github.com/noah-isme/repairshop-api/internal/catalog"
	"github.com/noah-isme/repairshop-api/internal/config"
	"github.com/noah-isme/repairshop-api/internal/health"
	"github.com/noah-isme/repairshop-api/internal/jobs"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/ratelimit"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.TracingEnabled,
		ServiceName:   cfg.ServiceName,
		Endpoint:      cfg.OTLPEndpoint,
		SamplingRatio: cfg.TraceSampleRate,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		cfg.TracingEnabled = false
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise application")
	}
	defer container.Close()

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics("repairshop", obs.ParseBucketsCSV(cfg.MetricsBuckets), prometheus.DefaultRegisterer)
	}

	verifier, err := auth.NewVerifier(auth.Config{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ClockSkew: 30 * time.Second,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}

	rateLimiter, err := ratelimit.New(container.Redis, "repairshop:ratelimit", cfg.RateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	redisOpt, err := container.AsynqRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task queue")
	}
	taskClient := asynq.NewClient(redisOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	handler := newRouter(routerDeps{
		Config:      cfg,
		Logger:      logger,
		HTTPMetrics: httpMetrics,
		Redis:       container.Redis,
		Limiter:     rateLimiter,
		Verifier:    verifier,
		Health:      health.Handler{Probes: container.Probes()},
		Catalog:     catalog.NewHandler(catalog.HandlerConfig{Service: container.Catalog}),
		Bundles:     bundle.NewHandler(bundle.HandlerConfig{Service: container.Bundles}),
		Tax: tax.NewHandler(tax.HandlerConfig{
			Service:  container.Tax,
			Enqueuer: jobs.NewEnqueuer(taskClient, obs.Component(logger, "jobs")),
		}),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}
