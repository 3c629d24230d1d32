package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// ErrAlreadyQueued is returned when the same period is already queued or running.
var ErrAlreadyQueued = errors.New("tax calculation already queued for this period")

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer publishes tax jobs to asynq. It satisfies tax.Enqueuer.
type Enqueuer struct {
	client taskClient
	logger zerolog.Logger
}

// NewEnqueuer wraps an asynq client (or anything with the same EnqueueContext).
func NewEnqueuer(client taskClient, logger zerolog.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger}
}

// EnqueueTaxCalculation queues a tax:calculate task and returns its id.
func (e *Enqueuer) EnqueueTaxCalculation(ctx context.Context, start, end time.Time) (string, error) {
	if start.IsZero() || end.IsZero() {
		return "", common.Invalid("period", "periodStart and periodEnd are required")
	}
	if end.Before(start) {
		return "", common.Invalid("periodEnd", "periodEnd must not be before periodStart")
	}
	task, err := NewTaxCalculateTask(start, end)
	if err != nil {
		return "", common.Internal(err)
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return "", common.Conflict(ErrAlreadyQueued.Error(), ErrAlreadyQueued)
		}
		e.logger.Error().Err(err).Str("task", TypeTaxCalculate).Msg("enqueue task")
		return "", common.Internal(fmt.Errorf("enqueue %s: %w", TypeTaxCalculate, err))
	}
	e.logger.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("tax calculation queued")
	return info.ID, nil
}
