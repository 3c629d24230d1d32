package tax

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/noah-isme/repairshop-api/internal/cache"
	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/events"
	"github.com/noah-isme/repairshop-api/internal/obs"
)

// Querier is the subset of generated queries the tax engine depends on.
type Querier interface {
	ListTaxRates(ctx context.Context) ([]dbgen.TaxRate, error)
	ListActiveTaxRates(ctx context.Context) ([]dbgen.TaxRate, error)
	GetTaxRate(ctx context.Context, id pgtype.UUID) (dbgen.TaxRate, error)
	CreateTaxRate(ctx context.Context, arg dbgen.CreateTaxRateParams) (dbgen.TaxRate, error)
	UpdateTaxRate(ctx context.Context, arg dbgen.UpdateTaxRateParams) (dbgen.TaxRate, error)
	DeleteTaxRate(ctx context.Context, id pgtype.UUID) (int64, error)
	ListOrdersForPeriod(ctx context.Context, arg dbgen.ListOrdersForPeriodParams) ([]dbgen.ListOrdersForPeriodRow, error)
	ListRegisterSessionsForPeriod(ctx context.Context, arg dbgen.ListRegisterSessionsForPeriodParams) ([]dbgen.ListRegisterSessionsForPeriodRow, error)
	InsertTaxRecord(ctx context.Context, arg dbgen.InsertTaxRecordParams) (int64, error)
	ListTaxRecords(ctx context.Context, arg dbgen.ListTaxRecordsParams) ([]dbgen.ListTaxRecordsRow, error)
	MarkTaxRecordsPaid(ctx context.Context, arg dbgen.MarkTaxRecordsPaidParams) (int64, error)
	SumUnpaidTax(ctx context.Context, arg dbgen.SumUnpaidTaxParams) (int64, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Querier) error) error
}

// Locker serialises writers on a key. lock.Locker satisfies it.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service implements the tax accrual engine.
type Service struct {
	queries Querier
	tx      TxRunner
	locker  Locker
	lockTTL time.Duration
	cache   *cache.JSON
	events  events.Emitter
	metrics *obs.DomainMetrics
	logger  zerolog.Logger
	loc     *time.Location
	now     func() time.Time
}

// ServiceConfig groups Service dependencies. Locker, Cache, Events and Metrics are optional.
type ServiceConfig struct {
	Queries  Querier
	Tx       TxRunner
	Locker   Locker
	LockTTL  time.Duration
	Cache    *cache.JSON
	Events   events.Emitter
	Metrics  *obs.DomainMetrics
	Logger   zerolog.Logger
	Location *time.Location
	Now      func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("tax: queries provider is required")
	}
	if cfg.Tx == nil {
		return nil, errors.New("tax: transaction runner is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &Service{
		queries: cfg.Queries,
		tx:      cfg.Tx,
		locker:  cfg.Locker,
		lockTTL: lockTTL,
		cache:   cfg.Cache,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		loc:     loc,
		now:     now,
	}, nil
}

// Location is the zone used to resolve calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("emit domain event")
	}
}

func (s *Service) fail(op string, err error) error {
	if common.IsAppError(err) {
		return err
	}
	s.logger.Error().Err(err).Str("op", op).Msg("tax operation failed")
	return common.Internal(fmt.Errorf("%s: %w", op, err))
}

func normalizeCategory(field, raw string) (string, error) {
	category := strings.ToUpper(strings.TrimSpace(raw))
	if !lo.Contains(Categories, category) {
		return "", common.Invalid(field, field+" must be one of "+strings.Join(Categories, ", "))
	}
	return category, nil
}

func parseID(field, value string) (pgtype.UUID, error) {
	id, err := db.ParseUUID(value)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest(field, field+" must be a valid uuid", err)
	}
	return id, nil
}

func optionalID(field string, value *string) (pgtype.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return pgtype.UUID{}, nil
	}
	return parseID(field, *value)
}
