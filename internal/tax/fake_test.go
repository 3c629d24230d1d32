package tax_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

type transaction struct {
	id        pgtype.UUID
	subtotal  int64
	createdAt time.Time
}

// fakeStore mimics the tax tables. Transactions are serialised by txMu; every
// query takes mu so the concurrent overview sums are safe.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	rates    []dbgen.TaxRate
	records  []dbgen.TaxRecord
	orders   []transaction
	sessions []transaction

	sumCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func (f *fakeStore) InTx(_ context.Context, fn func(tax.Querier) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	rates := append([]dbgen.TaxRate(nil), f.rates...)
	records := append([]dbgen.TaxRecord(nil), f.records...)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.rates, f.records = rates, records
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) addRate(name, category, percent string, active bool) pgtype.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	row := dbgen.TaxRate{
		ID:        newID(),
		Name:      name,
		Rate:      db.Numeric(decimal.RequireFromString(percent)),
		Category:  category,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.rates = append(f.rates, row)
	return row.ID
}

func (f *fakeStore) addOrder(subtotal int64, at time.Time) pgtype.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := newID()
	f.orders = append(f.orders, transaction{id: id, subtotal: subtotal, createdAt: at})
	return id
}

func (f *fakeStore) addSession(subtotal int64, at time.Time) pgtype.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := newID()
	f.sessions = append(f.sessions, transaction{id: id, subtotal: subtotal, createdAt: at})
	return id
}

func (f *fakeStore) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeStore) sums() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sumCalls
}

func fkError(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

func within(t time.Time, start, end pgtype.Timestamptz) bool {
	return !t.Before(start.Time) && !t.After(end.Time)
}

func (f *fakeStore) ListTaxRates(context.Context) ([]dbgen.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dbgen.TaxRate{}, f.rates...), nil
}

func (f *fakeStore) ListActiveTaxRates(context.Context) ([]dbgen.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []dbgen.TaxRate{}
	for _, r := range f.rates {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTaxRate(_ context.Context, id pgtype.UUID) (dbgen.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rates {
		if r.ID == id {
			return r, nil
		}
	}
	return dbgen.TaxRate{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateTaxRate(_ context.Context, arg dbgen.CreateTaxRateParams) (dbgen.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	row := dbgen.TaxRate{
		ID:          newID(),
		Name:        arg.Name,
		Rate:        arg.Rate,
		Category:    arg.Category,
		Description: arg.Description,
		IsActive:    arg.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.rates = append(f.rates, row)
	return row, nil
}

func (f *fakeStore) UpdateTaxRate(_ context.Context, arg dbgen.UpdateTaxRateParams) (dbgen.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rates {
		if r.ID != arg.ID {
			continue
		}
		if arg.Name.Valid {
			r.Name = arg.Name.String
		}
		if arg.Rate.Valid {
			r.Rate = arg.Rate
		}
		if arg.Category.Valid {
			r.Category = arg.Category.String
		}
		if arg.Description.Valid {
			r.Description = arg.Description
		}
		if arg.IsActive.Valid {
			r.IsActive = arg.IsActive.Bool
		}
		r.UpdatedAt = pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
		f.rates[i] = r
		return r, nil
	}
	return dbgen.TaxRate{}, pgx.ErrNoRows
}

func (f *fakeStore) DeleteTaxRate(_ context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.TaxRateID == id {
			return 0, fkError("tax_records_tax_rate_id_fkey")
		}
	}
	for i, r := range f.rates {
		if r.ID == id {
			f.rates = append(f.rates[:i], f.rates[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) hasRecord(order, session pgtype.UUID, start, end pgtype.Timestamptz) bool {
	for _, rec := range f.records {
		if !rec.PeriodStart.Time.Equal(start.Time) || !rec.PeriodEnd.Time.Equal(end.Time) {
			continue
		}
		if (order.Valid && rec.OrderID == order) || (session.Valid && rec.RegisterSessionID == session) {
			return true
		}
	}
	return false
}

func (f *fakeStore) ListOrdersForPeriod(_ context.Context, arg dbgen.ListOrdersForPeriodParams) ([]dbgen.ListOrdersForPeriodRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []dbgen.ListOrdersForPeriodRow{}
	for _, o := range f.orders {
		if !within(o.createdAt, arg.PeriodStart, arg.PeriodEnd) {
			continue
		}
		out = append(out, dbgen.ListOrdersForPeriodRow{
			ID:        o.id,
			Subtotal:  o.subtotal,
			CreatedAt: pgtype.Timestamptz{Time: o.createdAt, Valid: true},
			HasRecord: f.hasRecord(o.id, pgtype.UUID{}, arg.PeriodStart, arg.PeriodEnd),
		})
	}
	return out, nil
}

func (f *fakeStore) ListRegisterSessionsForPeriod(_ context.Context, arg dbgen.ListRegisterSessionsForPeriodParams) ([]dbgen.ListRegisterSessionsForPeriodRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []dbgen.ListRegisterSessionsForPeriodRow{}
	for _, s := range f.sessions {
		if !within(s.createdAt, arg.PeriodStart, arg.PeriodEnd) {
			continue
		}
		out = append(out, dbgen.ListRegisterSessionsForPeriodRow{
			ID:        s.id,
			Subtotal:  s.subtotal,
			CreatedAt: pgtype.Timestamptz{Time: s.createdAt, Valid: true},
			HasRecord: f.hasRecord(pgtype.UUID{}, s.id, arg.PeriodStart, arg.PeriodEnd),
		})
	}
	return out, nil
}

func (f *fakeStore) InsertTaxRecord(_ context.Context, arg dbgen.InsertTaxRecordParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if arg.OrderID.Valid && f.findTransaction(f.orders, arg.OrderID) == nil {
		return 0, fkError("tax_records_order_id_fkey")
	}
	if arg.RegisterSessionID.Valid && f.findTransaction(f.sessions, arg.RegisterSessionID) == nil {
		return 0, fkError("tax_records_register_session_id_fkey")
	}
	for _, rec := range f.records {
		if rec.TaxRateID != arg.TaxRateID {
			continue
		}
		if !rec.PeriodStart.Time.Equal(arg.PeriodStart.Time) || !rec.PeriodEnd.Time.Equal(arg.PeriodEnd.Time) {
			continue
		}
		// partial unique indexes: NULL sources never conflict
		if (arg.OrderID.Valid && rec.OrderID == arg.OrderID) || (arg.RegisterSessionID.Valid && rec.RegisterSessionID == arg.RegisterSessionID) {
			return 0, nil
		}
	}
	f.records = append(f.records, dbgen.TaxRecord{
		ID:                newID(),
		TaxRateID:         arg.TaxRateID,
		OrderID:           arg.OrderID,
		RegisterSessionID: arg.RegisterSessionID,
		TaxableAmount:     arg.TaxableAmount,
		TaxAmount:         arg.TaxAmount,
		PeriodStart:       arg.PeriodStart,
		PeriodEnd:         arg.PeriodEnd,
		CreatedAt:         pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	return 1, nil
}

func (f *fakeStore) findTransaction(in []transaction, id pgtype.UUID) *transaction {
	for i := range in {
		if in[i].id == id {
			return &in[i]
		}
	}
	return nil
}

func (f *fakeStore) ListTaxRecords(_ context.Context, arg dbgen.ListTaxRecordsParams) ([]dbgen.ListTaxRecordsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rates := make(map[pgtype.UUID]dbgen.TaxRate, len(f.rates))
	for _, r := range f.rates {
		rates[r.ID] = r
	}
	out := []dbgen.ListTaxRecordsRow{}
	for _, rec := range f.records {
		rate := rates[rec.TaxRateID]
		if arg.FromDate.Valid && rec.PeriodStart.Time.Before(arg.FromDate.Time) {
			continue
		}
		if arg.ToDate.Valid && rec.PeriodEnd.Time.After(arg.ToDate.Time) {
			continue
		}
		if arg.Category.Valid && rate.Category != arg.Category.String {
			continue
		}
		if arg.IsPaid.Valid && rec.IsPaid != arg.IsPaid.Bool {
			continue
		}
		row := dbgen.ListTaxRecordsRow{
			ID:                rec.ID,
			TaxRateID:         rec.TaxRateID,
			OrderID:           rec.OrderID,
			RegisterSessionID: rec.RegisterSessionID,
			TaxableAmount:     rec.TaxableAmount,
			TaxAmount:         rec.TaxAmount,
			PeriodStart:       rec.PeriodStart,
			PeriodEnd:         rec.PeriodEnd,
			IsPaid:            rec.IsPaid,
			PaidDate:          rec.PaidDate,
			CreatedAt:         rec.CreatedAt,
			RateName:          rate.Name,
			RatePercent:       rate.Rate,
			RateCategory:      rate.Category,
		}
		if o := f.findTransaction(f.orders, rec.OrderID); rec.OrderID.Valid && o != nil {
			row.OrderSubtotal = pgtype.Int8{Int64: o.subtotal, Valid: true}
			row.OrderCreatedAt = pgtype.Timestamptz{Time: o.createdAt, Valid: true}
		}
		if s := f.findTransaction(f.sessions, rec.RegisterSessionID); rec.RegisterSessionID.Valid && s != nil {
			row.SessionSubtotal = pgtype.Int8{Int64: s.subtotal, Valid: true}
			row.SessionOpenedAt = pgtype.Timestamptz{Time: s.createdAt, Valid: true}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodStart.Time.After(out[j].PeriodStart.Time)
	})
	return out, nil
}

func (f *fakeStore) MarkTaxRecordsPaid(_ context.Context, arg dbgen.MarkTaxRecordsPaidParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i, rec := range f.records {
		if rec.IsPaid {
			continue
		}
		for _, id := range arg.Ids {
			if rec.ID == id {
				f.records[i].IsPaid = true
				f.records[i].PaidDate = arg.PaidDate
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeStore) SumUnpaidTax(_ context.Context, arg dbgen.SumUnpaidTaxParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sumCalls++
	var sum int64
	for _, rec := range f.records {
		if !rec.IsPaid && within(rec.PeriodStart.Time, arg.FromDate, arg.ToDate) {
			sum += rec.TaxAmount
		}
	}
	return sum, nil
}

type captureEmitter struct {
	mu     sync.Mutex
	topics []string
}

func (c *captureEmitter) Emit(_ context.Context, topic string, aggregateID pgtype.UUID, _ any) (dbgen.DomainEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return dbgen.DomainEvent{ID: newID(), Topic: topic, AggregateID: aggregateID}, nil
}

func newService(t *testing.T, store *fakeStore, mutate ...func(*tax.ServiceConfig)) (*tax.Service, *captureEmitter) {
	t.Helper()
	emitter := &captureEmitter{}
	cfg := tax.ServiceConfig{
		Queries: store,
		Tx:      store,
		Events:  emitter,
		Logger:  zerolog.Nop(),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := tax.NewService(cfg)
	require.NoError(t, err)
	return svc, emitter
}
