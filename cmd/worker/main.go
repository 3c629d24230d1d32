package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/noah-isme/repairshop-api/internal/app"
	"github.com/noah-isme/repairshop-api/internal/config"
	"github.com/noah-isme/repairshop-api/internal/jobs"
	"github.com/noah-isme/repairshop-api/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise application")
	}
	defer container.Close()

	redisOpt, err := container.AsynqRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task queue")
	}

	server := jobs.NewServer(redisOpt, jobs.ServerConfig{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      obs.Component(logger, "asynq"),
	})
	mux := jobs.NewMux(jobs.TaxHandler{
		Calculator: container.Tax,
		Metrics:    container.Metrics,
		Logger:     obs.Component(logger, "tax-jobs"),
	})

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := server.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	server.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}
