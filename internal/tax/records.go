package tax

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/events"
)

type paidEvent struct {
	IDs      []string  `json:"ids"`
	Count    int64     `json:"count"`
	PaidDate time.Time `json:"paidDate"`
}

// GetTaxRecords returns records matching f joined with their rate, order and register session,
// newest period first.
func (s *Service) GetTaxRecords(ctx context.Context, f Filters) ([]Record, error) {
	params, err := s.listParams(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListTaxRecords(ctx, params)
	if err != nil {
		return nil, s.fail("list tax records", err)
	}
	return lo.Map(rows, toRecord), nil
}

// GetTaxSummary folds the records matching f into totals per rate category.
func (s *Service) GetTaxSummary(ctx context.Context, f Filters) (Summary, error) {
	records, err := s.GetTaxRecords(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

// MarkTaxAsPaid flags the given unpaid records as paid on paidDate (default now) and
// returns how many rows changed. Records that are already paid keep their paid date.
func (s *Service) MarkTaxAsPaid(ctx context.Context, ids []string, paidDate *time.Time) (int64, error) {
	ids = lo.Uniq(lo.Map(ids, func(id string, _ int) string { return strings.TrimSpace(id) }))
	if len(ids) == 0 {
		return 0, common.Invalid("ids", "at least one tax record id is required")
	}
	parsed := make([]pgtype.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := parseID("ids", raw)
		if err != nil {
			return 0, err
		}
		parsed = append(parsed, id)
	}
	paid := s.now()
	if paidDate != nil && !paidDate.IsZero() {
		paid = *paidDate
	}

	n, err := s.queries.MarkTaxRecordsPaid(ctx, dbgen.MarkTaxRecordsPaidParams{
		PaidDate: db.Timestamptz(paid),
		Ids:      parsed,
	})
	if err != nil {
		return 0, s.fail("mark tax records paid", err)
	}
	if n > 0 {
		s.metrics.RecordTaxPaid(n)
		s.invalidateDue(ctx)
		s.emit(ctx, events.TopicTaxRecordsPaid, pgtype.UUID{Bytes: uuid.New(), Valid: true}, paidEvent{IDs: ids, Count: n, PaidDate: paid})
	}
	return n, nil
}

// Summarize totals records in one pass, grouped by rate category in alphabetical order.
func Summarize(records []Record) Summary {
	summary := Summary{ByCategory: []CategoryBreakdown{}}
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.TaxRate.Category]
		if !ok {
			i = len(summary.ByCategory)
			index[r.TaxRate.Category] = i
			summary.ByCategory = append(summary.ByCategory, CategoryBreakdown{Category: r.TaxRate.Category})
		}
		summary.Totals.add(r)
		summary.ByCategory[i].Totals.add(r)
	}
	slices.SortFunc(summary.ByCategory, func(a, b CategoryBreakdown) int {
		return strings.Compare(a.Category, b.Category)
	})
	return summary
}

func (t *Totals) add(r Record) {
	t.TotalTaxable += r.TaxableAmount
	t.TotalTaxDue += r.TaxAmount
	if r.IsPaid {
		t.TotalPaid += r.TaxAmount
	} else {
		t.TotalUnpaid += r.TaxAmount
	}
	t.RecordCount++
}

func (s *Service) listParams(f Filters) (dbgen.ListTaxRecordsParams, error) {
	var params dbgen.ListTaxRecordsParams
	if f.From != nil && !f.From.IsZero() {
		params.FromDate = db.Timestamptz(StartOfDay(*f.From, s.loc))
	}
	if f.To != nil && !f.To.IsZero() {
		params.ToDate = db.Timestamptz(EndOfDay(*f.To, s.loc))
	}
	if params.FromDate.Valid && params.ToDate.Valid && params.ToDate.Time.Before(params.FromDate.Time) {
		return params, common.Invalid("to", "to must not be before from")
	}
	if f.Category != nil && strings.TrimSpace(*f.Category) != "" {
		category, err := normalizeCategory("category", *f.Category)
		if err != nil {
			return params, err
		}
		params.Category = pgtype.Text{String: category, Valid: true}
	}
	if f.IsPaid != nil {
		params.IsPaid = pgtype.Bool{Bool: *f.IsPaid, Valid: true}
	}
	return params, nil
}

func toRecord(r dbgen.ListTaxRecordsRow, _ int) Record {
	rec := Record{
		ID: db.UUIDString(r.ID),
		TaxRate: RateRef{
			ID:       db.UUIDString(r.TaxRateID),
			Name:     r.RateName,
			Rate:     db.Decimal(r.RatePercent),
			Category: r.RateCategory,
		},
		OrderID:           db.UUIDPtr(r.OrderID),
		RegisterSessionID: db.UUIDPtr(r.RegisterSessionID),
		TaxableAmount:     r.TaxableAmount,
		TaxAmount:         r.TaxAmount,
		PeriodStart:       r.PeriodStart.Time,
		PeriodEnd:         r.PeriodEnd.Time,
		IsPaid:            r.IsPaid,
		PaidDate:          db.TimePtr(r.PaidDate),
		CreatedAt:         r.CreatedAt.Time,
	}
	if r.OrderID.Valid && r.OrderSubtotal.Valid {
		rec.Order = &Transaction{ID: *rec.OrderID, Subtotal: r.OrderSubtotal.Int64, CreatedAt: db.TimePtr(r.OrderCreatedAt)}
	}
	if r.RegisterSessionID.Valid && r.SessionSubtotal.Valid {
		rec.RegisterSession = &Transaction{ID: *rec.RegisterSessionID, Subtotal: r.SessionSubtotal.Int64, CreatedAt: db.TimePtr(r.SessionOpenedAt)}
	}
	return rec
}
