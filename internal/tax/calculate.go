package tax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/events"
	"github.com/noah-isme/repairshop-api/internal/lock"
	"github.com/noah-isme/repairshop-api/internal/pricing"
)

// CalculateTaxes accrues one record per active rate for every order and register session
// created between the start of periodStart's day and the end of periodEnd's day.
// Transactions that already carry records for the same period are skipped, so repeated
// or concurrent runs never duplicate records.
func (s *Service) CalculateTaxes(ctx context.Context, periodStart, periodEnd time.Time) (CalculationResult, error) {
	if periodStart.IsZero() {
		return CalculationResult{}, common.Invalid("periodStart", "periodStart is required")
	}
	if periodEnd.IsZero() {
		return CalculationResult{}, common.Invalid("periodEnd", "periodEnd is required")
	}
	start := StartOfDay(periodStart, s.loc)
	end := EndOfDay(periodEnd, s.loc)
	if end.Before(start) {
		return CalculationResult{}, common.Invalid("periodEnd", "periodEnd must not be before periodStart")
	}

	var result CalculationResult
	err := s.withPeriodLock(ctx, start, end, func(ctx context.Context) error {
		var err error
		result, err = s.calculate(ctx, start, end)
		return err
	})
	if err != nil {
		s.metrics.RecordTaxRun(runOutcome(err))
		return CalculationResult{}, s.fail("calculate taxes", err)
	}

	s.metrics.RecordTaxRun("ok")
	s.metrics.RecordTaxRecords("period", result.Created)
	s.logger.Info().
		Time("period_start", start).
		Time("period_end", end).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("tax calculation finished")
	if result.Created > 0 {
		s.invalidateDue(ctx)
		id := periodID(start, end)
		s.emit(ctx, events.TopicTaxRecordsGenerated, pgtype.UUID{Bytes: id, Valid: true}, result)
	}
	return result, nil
}

// CreateTaxRecords writes ad-hoc records for one taxable amount, dated to the calendar
// month containing opts.At (default now). An order or register session may be named,
// but not both; Category restricts the rates applied.
func (s *Service) CreateTaxRecords(ctx context.Context, taxableAmount int64, opts RecordOptions) (CalculationResult, error) {
	if taxableAmount < 0 {
		return CalculationResult{}, common.Invalid("taxableAmount", "taxableAmount must not be negative")
	}
	orderID, err := optionalID("orderId", opts.OrderID)
	if err != nil {
		return CalculationResult{}, err
	}
	sessionID, err := optionalID("registerSessionId", opts.RegisterSessionID)
	if err != nil {
		return CalculationResult{}, err
	}
	if orderID.Valid && sessionID.Valid {
		return CalculationResult{}, common.Invalid("registerSessionId", "set either orderId or registerSessionId, not both")
	}
	var category string
	if opts.Category != nil && *opts.Category != "" {
		if category, err = normalizeCategory("category", *opts.Category); err != nil {
			return CalculationResult{}, err
		}
	}
	at := s.now()
	if opts.At != nil && !opts.At.IsZero() {
		at = *opts.At
	}
	start, end := MonthWindow(at, s.loc)

	result := CalculationResult{PeriodStart: start, PeriodEnd: end}
	if orderID.Valid {
		result.Orders = 1
	}
	if sessionID.Valid {
		result.RegisterSessions = 1
	}
	err = s.tx.InTx(ctx, func(q Querier) error {
		rates, err := q.ListActiveTaxRates(ctx)
		if err != nil {
			return fmt.Errorf("list active rates: %w", err)
		}
		if category != "" {
			rates = lo.Filter(rates, func(r dbgen.TaxRate, _ int) bool { return r.Category == category })
		}
		if len(rates) == 0 {
			return noActiveRates()
		}
		n, err := insertRecords(ctx, q, rates, recordSource{order: orderID, session: sessionID}, taxableAmount, start, end)
		if err != nil {
			return err
		}
		result.Created = n
		if n == 0 && (orderID.Valid || sessionID.Valid) {
			result.Skipped = 1
		}
		return nil
	})
	if err != nil {
		return CalculationResult{}, s.fail("create tax records", mapRecordWriteError(err))
	}

	s.metrics.RecordTaxRecords("adhoc", result.Created)
	if result.Created > 0 {
		s.invalidateDue(ctx)
		aggregate := lo.Ternary(orderID.Valid, orderID, sessionID)
		if !aggregate.Valid {
			aggregate = pgtype.UUID{Bytes: periodID(start, end), Valid: true}
		}
		s.emit(ctx, events.TopicTaxRecordsGenerated, aggregate, result)
	}
	return result, nil
}

func (s *Service) calculate(ctx context.Context, start, end time.Time) (CalculationResult, error) {
	result := CalculationResult{PeriodStart: start, PeriodEnd: end}
	periodStart, periodEnd := db.Timestamptz(start), db.Timestamptz(end)

	err := s.tx.InTx(ctx, func(q Querier) error {
		rates, err := q.ListActiveTaxRates(ctx)
		if err != nil {
			return fmt.Errorf("list active rates: %w", err)
		}
		if len(rates) == 0 {
			return noActiveRates()
		}
		orders, err := q.ListOrdersForPeriod(ctx, dbgen.ListOrdersForPeriodParams{PeriodStart: periodStart, PeriodEnd: periodEnd})
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		sessions, err := q.ListRegisterSessionsForPeriod(ctx, dbgen.ListRegisterSessionsForPeriodParams{PeriodStart: periodStart, PeriodEnd: periodEnd})
		if err != nil {
			return fmt.Errorf("list register sessions: %w", err)
		}
		if len(orders) == 0 && len(sessions) == 0 {
			return noTransactions()
		}
		result.Orders, result.RegisterSessions = len(orders), len(sessions)

		for _, o := range orders {
			if o.HasRecord {
				result.Skipped++
				continue
			}
			n, err := insertRecords(ctx, q, rates, recordSource{order: o.ID}, o.Subtotal, start, end)
			if err != nil {
				return err
			}
			result.Created += n
		}
		for _, rs := range sessions {
			if rs.HasRecord {
				result.Skipped++
				continue
			}
			n, err := insertRecords(ctx, q, rates, recordSource{session: rs.ID}, rs.Subtotal, start, end)
			if err != nil {
				return err
			}
			result.Created += n
		}
		return nil
	})
	if err != nil {
		return CalculationResult{}, err
	}
	return result, nil
}

// withPeriodLock holds the redis lock for the period around fn. Without a locker the
// unique indexes alone keep runs from duplicating records.
func (s *Service) withPeriodLock(ctx context.Context, start, end time.Time, fn func(context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	err := s.locker.WithLock(ctx, "tax:calculate:"+PeriodKey(start, end), s.lockTTL, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return common.Conflict(ErrCalculationRunning.Error(), ErrCalculationRunning)
	}
	return err
}

type recordSource struct {
	order   pgtype.UUID
	session pgtype.UUID
}

func insertRecords(ctx context.Context, q Querier, rates []dbgen.TaxRate, src recordSource, taxable int64, start, end time.Time) (int, error) {
	created := 0
	for _, rate := range rates {
		n, err := q.InsertTaxRecord(ctx, dbgen.InsertTaxRecordParams{
			TaxRateID:         rate.ID,
			OrderID:           src.order,
			RegisterSessionID: src.session,
			TaxableAmount:     taxable,
			TaxAmount:         pricing.TaxAmount(taxable, db.Decimal(rate.Rate)),
			PeriodStart:       db.Timestamptz(start),
			PeriodEnd:         db.Timestamptz(end),
		})
		if err != nil {
			return created, fmt.Errorf("insert tax record: %w", err)
		}
		created += int(n)
	}
	return created, nil
}

func mapRecordWriteError(err error) error {
	if db.IsForeignKeyViolation(err) {
		switch db.ConstraintName(err) {
		case "tax_records_order_id_fkey", "tax_records_register_session_id_fkey":
			return common.NotFound(ErrSourceNotFound.Error(), ErrSourceNotFound)
		}
	}
	return err
}

func runOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNoActiveRates):
		return "no_rates"
	case errors.Is(err, ErrNoTransactions):
		return "no_transactions"
	case errors.Is(err, ErrCalculationRunning):
		return "locked"
	default:
		return "error"
	}
}
