package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/repairshop-api/internal/tax"
)

const (
	// TypeTaxCalculate runs tax.Service.CalculateTaxes for one period.
	TypeTaxCalculate = "tax:calculate"
	// QueueTax is the asynq queue tax tasks are placed on.
	QueueTax = "tax"

	taxMaxRetry = 3
	taxTimeout  = 10 * time.Minute
)

// TaxCalculatePayload is the JSON body of a tax:calculate task.
type TaxCalculatePayload struct {
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

// NewTaxCalculateTask builds the task. Its id is derived from the period so asynq
// rejects a second request for a period that is still queued or running.
func NewTaxCalculateTask(start, end time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(TaxCalculatePayload{PeriodStart: start.UTC(), PeriodEnd: end.UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", TypeTaxCalculate, err)
	}
	return asynq.NewTask(TypeTaxCalculate, payload,
		asynq.TaskID(TaxTaskID(start, end)),
		asynq.Queue(QueueTax),
		asynq.MaxRetry(taxMaxRetry),
		asynq.Timeout(taxTimeout),
	), nil
}

// TaxTaskID is the asynq task id for a period.
func TaxTaskID(start, end time.Time) string {
	return TypeTaxCalculate + ":" + tax.PeriodKey(start, end)
}
