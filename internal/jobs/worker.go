package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

// TaxCalculator is the part of tax.Service the worker drives.
type TaxCalculator interface {
	CalculateTaxes(ctx context.Context, periodStart, periodEnd time.Time) (tax.CalculationResult, error)
}

// TaxHandler processes tax:calculate tasks.
type TaxHandler struct {
	Calculator TaxCalculator
	Metrics    *obs.DomainMetrics
	Logger     zerolog.Logger
}

// ProcessTask implements asynq.Handler. Domain failures (no rates, no transactions,
// bad period) are final and skip the retry queue; anything else is retried.
func (h TaxHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p TaxCalculatePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.Metrics.RecordJob(t.Type(), "invalid")
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	taskID, _ := asynq.GetTaskID(ctx)
	logger := h.Logger.With().Str("task", t.Type()).Str("task_id", taskID).Logger()

	result, err := h.Calculator.CalculateTaxes(ctx, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		if final(err) {
			h.Metrics.RecordJob(t.Type(), "rejected")
			logger.Warn().Err(err).Msg("tax calculation rejected")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		h.Metrics.RecordJob(t.Type(), "error")
		return err
	}
	h.Metrics.RecordJob(t.Type(), "ok")
	logger.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("tax calculation finished")
	return nil
}

// final reports whether err is a client-side failure that a retry cannot fix.
// A concurrent run holding the period lock is worth retrying.
func final(err error) bool {
	if errors.Is(err, tax.ErrCalculationRunning) {
		return false
	}
	var appErr *common.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus < 500
}

// ServerConfig tunes the asynq worker server.
type ServerConfig struct {
	Concurrency int
	Logger      zerolog.Logger
}

// NewServer builds an asynq server consuming the tax queue.
func NewServer(redisOpt asynq.RedisConnOpt, cfg ServerConfig) *asynq.Server {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	logger := cfg.Logger
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueTax: 1},
		Logger:      asynqLogger{logger},
		IsFailure:   func(err error) bool { return !errors.Is(err, asynq.SkipRetry) },
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error().Err(err).
				Str("task", t.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("task failed")
		}),
	})
}

// NewMux routes task types to their handlers.
func NewMux(taxHandler TaxHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeTaxCalculate, taxHandler)
	return mux
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
