package tax_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/repairshop-api/internal/cache"
	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	"github.com/noah-isme/repairshop-api/internal/events"
	"github.com/noah-isme/repairshop-api/internal/lock"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// stateAndLocal seeds STATE 6% and LOCAL 2% with one $200 order on 10 March 2026.
func stateAndLocal() *fakeStore {
	store := newFakeStore()
	store.addRate("State sales tax", "STATE", "6", true)
	store.addRate("City surcharge", "LOCAL", "2", true)
	store.addOrder(20000, time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC))
	return store
}

func TestCalculateTaxesStateAndLocal(t *testing.T) {
	store := stateAndLocal()
	svc, emitter := newService(t, store)
	ctx := context.Background()

	result, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)
	require.Equal(t, 1, result.Orders)
	require.Equal(t, 2, result.Created)
	require.Zero(t, result.Skipped)
	require.Equal(t, date(2026, time.March, 1), result.PeriodStart)
	require.Equal(t, date(2026, time.April, 1).Add(-time.Microsecond), result.PeriodEnd)

	records, err := svc.GetTaxRecords(ctx, tax.Filters{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	amounts := map[string]int64{}
	for _, r := range records {
		require.Equal(t, int64(20000), r.TaxableAmount)
		require.NotNil(t, r.Order)
		require.Equal(t, int64(20000), r.Order.Subtotal)
		require.False(t, r.IsPaid)
		amounts[r.TaxRate.Category] = r.TaxAmount
	}
	require.Equal(t, map[string]int64{"STATE": 1200, "LOCAL": 400}, amounts)

	again, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)
	require.Zero(t, again.Created)
	require.Equal(t, 1, again.Skipped)
	require.Equal(t, 2, store.recordCount())
	require.Equal(t, []string{events.TopicTaxRecordsGenerated}, emitter.topics)
}

func TestCalculateTaxesFractionalRate(t *testing.T) {
	store := newFakeStore()
	store.addRate("County", "COUNTY", "8.25", true)
	store.addSession(10000, time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC))
	svc, _ := newService(t, store)

	result, err := svc.CalculateTaxes(context.Background(), date(2026, time.June, 1), date(2026, time.June, 30))
	require.NoError(t, err)
	require.Equal(t, 1, result.RegisterSessions)

	records, err := svc.GetTaxRecords(context.Background(), tax.Filters{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(825), records[0].TaxAmount)
	require.NotNil(t, records[0].RegisterSession)
	require.Nil(t, records[0].OrderID)
}

func TestCalculateTaxesFailures(t *testing.T) {
	ctx := context.Background()
	metrics := obs.NewDomainMetrics("test", prometheus.NewRegistry())
	withMetrics := func(cfg *tax.ServiceConfig) { cfg.Metrics = metrics }

	t.Run("no active rates", func(t *testing.T) {
		store := newFakeStore()
		store.addRate("Retired", "STATE", "5", false)
		store.addOrder(1000, date(2026, time.March, 3))
		svc, _ := newService(t, store, withMetrics)

		_, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
		require.ErrorIs(t, err, tax.ErrNoActiveRates)
		var appErr *common.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, tax.CodeNoActiveRates, appErr.Code)
		require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
		require.Equal(t, float64(1), testutil.ToFloat64(metrics.TaxCalculationRuns.WithLabelValues("no_rates")))
	})

	t.Run("no transactions", func(t *testing.T) {
		store := newFakeStore()
		store.addRate("State", "STATE", "6", true)
		store.addOrder(1000, date(2026, time.May, 3))
		svc, _ := newService(t, store, withMetrics)

		_, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
		require.ErrorIs(t, err, tax.ErrNoTransactions)
		require.Zero(t, store.recordCount())
	})

	t.Run("inverted period", func(t *testing.T) {
		svc, _ := newService(t, stateAndLocal())
		_, err := svc.CalculateTaxes(ctx, date(2026, time.March, 31), date(2026, time.March, 1))
		require.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("missing bound", func(t *testing.T) {
		svc, _ := newService(t, stateAndLocal())
		_, err := svc.CalculateTaxes(ctx, time.Time{}, date(2026, time.March, 1))
		require.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestCalculateTaxesUsesConfiguredZone(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*60*60)
	store := newFakeStore()
	store.addRate("State", "STATE", "6", true)
	// 1 April 03:00 local time
	store.addOrder(5000, time.Date(2026, time.March, 31, 20, 0, 0, 0, time.UTC))
	inMarch := store.addOrder(7000, time.Date(2026, time.March, 31, 16, 0, 0, 0, time.UTC))
	svc, _ := newService(t, store, func(cfg *tax.ServiceConfig) { cfg.Location = zone })

	result, err := svc.CalculateTaxes(context.Background(),
		time.Date(2026, time.March, 1, 12, 0, 0, 0, zone),
		time.Date(2026, time.March, 31, 8, 0, 0, 0, zone))
	require.NoError(t, err)
	require.Equal(t, 1, result.Orders)
	require.True(t, result.PeriodStart.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, zone)))

	records, err := svc.GetTaxRecords(context.Background(), tax.Filters{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, db.UUIDString(inMarch), *records[0].OrderID)
}

func TestCalculateTaxesConcurrentRunsDoNotDuplicate(t *testing.T) {
	_, client := newRedis(t)
	store := stateAndLocal()
	store.addSession(3000, date(2026, time.March, 20))
	locker := lock.Locker{Client: client, Prefix: "lock:", Wait: 5 * time.Second, RetryBackoff: 5 * time.Millisecond}
	svc, _ := newService(t, store, func(cfg *tax.ServiceConfig) { cfg.Locker = locker })

	const runs = 6
	var wg sync.WaitGroup
	created := make([]int, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.CalculateTaxes(context.Background(), date(2026, time.March, 1), date(2026, time.March, 31))
			created[i], errs[i] = res.Created, err
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range created {
		require.NoError(t, errs[i])
		total += created[i]
	}
	require.Equal(t, 4, total)
	require.Equal(t, 4, store.recordCount())
}

func TestCalculateTaxesLockHeld(t *testing.T) {
	mr, client := newRedis(t)
	svc, _ := newService(t, stateAndLocal(), func(cfg *tax.ServiceConfig) {
		cfg.Locker = lock.Locker{Client: client, Prefix: "lock:"}
	})
	start := tax.StartOfDay(date(2026, time.March, 1), time.UTC)
	end := tax.EndOfDay(date(2026, time.March, 31), time.UTC)
	require.NoError(t, mr.Set("lock:tax:calculate:"+tax.PeriodKey(start, end), "other-writer"))

	_, err := svc.CalculateTaxes(context.Background(), start, end)
	require.ErrorIs(t, err, tax.ErrCalculationRunning)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, common.CodeConflict, appErr.Code)
}

func TestCreateTaxRecords(t *testing.T) {
	store := stateAndLocal()
	order := store.addOrder(10000, date(2026, time.February, 14))
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	svc, _ := newService(t, store, func(cfg *tax.ServiceConfig) { cfg.Now = func() time.Time { return now } })
	ctx := context.Background()

	result, err := svc.CreateTaxRecords(ctx, 10000, tax.RecordOptions{OrderID: ptr(db.UUIDString(order)), Category: ptr("state")})
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, date(2026, time.February, 1), result.PeriodStart)
	require.Equal(t, date(2026, time.March, 1).Add(-time.Microsecond), result.PeriodEnd)

	again, err := svc.CreateTaxRecords(ctx, 10000, tax.RecordOptions{OrderID: ptr(db.UUIDString(order)), Category: ptr("STATE")})
	require.NoError(t, err)
	require.Zero(t, again.Created)
	require.Equal(t, 1, again.Skipped)

	free, err := svc.CreateTaxRecords(ctx, 5000, tax.RecordOptions{At: ptr(date(2026, time.January, 9))})
	require.NoError(t, err)
	require.Equal(t, 2, free.Created)
	require.Equal(t, date(2026, time.January, 1), free.PeriodStart)

	_, err = svc.CreateTaxRecords(ctx, 100, tax.RecordOptions{
		OrderID:           ptr(db.UUIDString(order)),
		RegisterSessionID: ptr(db.UUIDString(newID())),
	})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateTaxRecords(ctx, -1, tax.RecordOptions{})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateTaxRecords(ctx, 100, tax.RecordOptions{OrderID: ptr(db.UUIDString(newID()))})
	require.ErrorIs(t, err, tax.ErrSourceNotFound)

	_, err = svc.CreateTaxRecords(ctx, 100, tax.RecordOptions{Category: ptr("FEDERAL")})
	require.ErrorIs(t, err, tax.ErrNoActiveRates)

	require.Equal(t, 3, store.recordCount())
}

func TestMarkTaxAsPaidIsOneWay(t *testing.T) {
	store := stateAndLocal()
	svc, emitter := newService(t, store)
	ctx := context.Background()
	_, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)

	records, err := svc.GetTaxRecords(ctx, tax.Filters{Category: ptr("STATE")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	first := date(2026, time.April, 15)

	n, err := svc.MarkTaxAsPaid(ctx, []string{records[0].ID, records[0].ID}, &first)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	later := date(2026, time.May, 1)
	n, err = svc.MarkTaxAsPaid(ctx, []string{records[0].ID}, &later)
	require.NoError(t, err)
	require.Zero(t, n)

	paid, err := svc.GetTaxRecords(ctx, tax.Filters{IsPaid: ptr(true)})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.True(t, paid[0].PaidDate.Equal(first))

	unpaid, err := svc.GetTaxRecords(ctx, tax.Filters{IsPaid: ptr(false)})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	require.Equal(t, "LOCAL", unpaid[0].TaxRate.Category)

	_, err = svc.MarkTaxAsPaid(ctx, nil, nil)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.MarkTaxAsPaid(ctx, []string{"not-a-uuid"}, nil)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, common.CodeBadRequest, appErr.Code)

	require.Equal(t, []string{events.TopicTaxRecordsGenerated, events.TopicTaxRecordsPaid}, emitter.topics)
}

func TestGetTaxSummary(t *testing.T) {
	store := stateAndLocal()
	store.addOrder(5000, date(2026, time.March, 12))
	svc, _ := newService(t, store)
	ctx := context.Background()
	_, err := svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)

	state, err := svc.GetTaxRecords(ctx, tax.Filters{Category: ptr("STATE")})
	require.NoError(t, err)
	_, err = svc.MarkTaxAsPaid(ctx, []string{state[0].ID}, nil)
	require.NoError(t, err)

	summary, err := svc.GetTaxSummary(ctx, tax.Filters{})
	require.NoError(t, err)
	require.Equal(t, 4, summary.RecordCount)
	require.Equal(t, int64(50000), summary.TotalTaxable)
	require.Equal(t, int64(1200+400+300+100), summary.TotalTaxDue)
	require.Equal(t, summary.TotalTaxDue, summary.TotalPaid+summary.TotalUnpaid)

	require.Len(t, summary.ByCategory, 2)
	require.Equal(t, "LOCAL", summary.ByCategory[0].Category)
	require.Equal(t, "STATE", summary.ByCategory[1].Category)
	var folded tax.Totals
	for _, b := range summary.ByCategory {
		folded.TotalTaxable += b.TotalTaxable
		folded.TotalTaxDue += b.TotalTaxDue
		folded.TotalPaid += b.TotalPaid
		folded.TotalUnpaid += b.TotalUnpaid
		folded.RecordCount += b.RecordCount
	}
	require.Equal(t, summary.Totals, folded)

	_, err = svc.GetTaxSummary(ctx, tax.Filters{From: ptr(date(2026, time.April, 1)), To: ptr(date(2026, time.March, 1))})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.GetTaxSummary(ctx, tax.Filters{Category: ptr("MUNICIPAL")})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := tax.Summarize(nil)
	require.Zero(t, summary.RecordCount)
	require.NotNil(t, summary.ByCategory)
	require.Empty(t, summary.ByCategory)
}

func TestTaxDueOverviewCachedUntilWrite(t *testing.T) {
	_, client := newRedis(t)
	store := newFakeStore()
	store.addRate("State", "STATE", "10", true)
	store.addOrder(10000, date(2026, time.May, 4))
	store.addOrder(20000, date(2026, time.February, 4))
	now := time.Date(2026, time.May, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, store, func(cfg *tax.ServiceConfig) {
		cfg.Cache = cache.NewJSON(client, "test:", time.Minute)
		cfg.Now = func() time.Time { return now }
	})
	ctx := context.Background()

	_, err := svc.CalculateTaxes(ctx, date(2026, time.May, 1), date(2026, time.May, 31))
	require.NoError(t, err)
	_, err = svc.CalculateTaxes(ctx, date(2026, time.February, 1), date(2026, time.February, 28))
	require.NoError(t, err)

	overview, err := svc.GetTaxDueOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1000), overview.Month.Unpaid)
	require.Equal(t, int64(1000), overview.Quarter.Unpaid)
	require.Equal(t, int64(3000), overview.Year.Unpaid)
	require.Equal(t, date(2026, time.April, 1), overview.Quarter.Start)
	require.Equal(t, 3, store.sums())

	cached, err := svc.GetTaxDueOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, overview.Year.Unpaid, cached.Year.Unpaid)
	require.Equal(t, 3, store.sums())

	may, err := svc.GetTaxRecords(ctx, tax.Filters{From: ptr(date(2026, time.May, 1))})
	require.NoError(t, err)
	require.Len(t, may, 1)
	_, err = svc.MarkTaxAsPaid(ctx, []string{may[0].ID}, nil)
	require.NoError(t, err)

	fresh, err := svc.GetTaxDueOverview(ctx)
	require.NoError(t, err)
	require.Zero(t, fresh.Month.Unpaid)
	require.Equal(t, int64(2000), fresh.Year.Unpaid)
	require.Equal(t, 6, store.sums())
}

func TestRateAdministration(t *testing.T) {
	store := stateAndLocal()
	svc, _ := newService(t, store)
	ctx := context.Background()

	created, err := svc.CreateRate(ctx, tax.RateInput{Name: " Federal excise ", Rate: ptr(decimal.RequireFromString("1.5")), Category: "federal"})
	require.NoError(t, err)
	require.Equal(t, "Federal excise", created.Name)
	require.Equal(t, "FEDERAL", created.Category)
	require.True(t, created.IsActive)
	require.True(t, decimal.RequireFromString("1.5").Equal(created.Rate))

	invalid := []tax.RateInput{
		{Name: "Too high", Rate: ptr(decimal.NewFromInt(101)), Category: "STATE"},
		{Name: "Negative", Rate: ptr(decimal.NewFromInt(-1)), Category: "STATE"},
		{Name: "Too precise", Rate: ptr(decimal.RequireFromString("1.23456")), Category: "STATE"},
		{Name: "No rate", Category: "STATE"},
		{Name: "Unknown", Rate: ptr(decimal.NewFromInt(1)), Category: "MUNICIPAL"},
		{Name: "  ", Rate: ptr(decimal.NewFromInt(1)), Category: "STATE"},
	}
	for _, in := range invalid {
		_, err := svc.CreateRate(ctx, in)
		require.ErrorIs(t, err, common.ErrValidation, in.Name)
	}

	updated, err := svc.UpdateRate(ctx, created.ID, tax.RateUpdate{IsActive: ptr(false), Rate: ptr(decimal.NewFromInt(2))})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Equal(t, "Federal excise", updated.Name)

	active, err := svc.GetActiveTaxRates(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	all, err := svc.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = svc.UpdateRate(ctx, db.UUIDString(newID()), tax.RateUpdate{Name: ptr("Ghost")})
	require.ErrorIs(t, err, tax.ErrRateNotFound)

	require.NoError(t, svc.DeleteRate(ctx, created.ID))
	require.ErrorIs(t, svc.DeleteRate(ctx, created.ID), tax.ErrRateNotFound)

	_, err = svc.CalculateTaxes(ctx, date(2026, time.March, 1), date(2026, time.March, 31))
	require.NoError(t, err)
	err = svc.DeleteRate(ctx, db.UUIDString(store.rates[0].ID))
	require.ErrorIs(t, err, tax.ErrRateInUse)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, common.CodeCannotDelete, appErr.Code)
}
