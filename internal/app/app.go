// Package app wires configuration, infrastructure clients and domain services into
// one container shared by the API and the worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/repairshop-api/internal/bundle"
	"github.com/noah-isme/repairshop-api/internal/cache"
	"github.com/noah-isme/repairshop-api/internal/catalog"
	"github.com/noah-isme/repairshop-api/internal/config"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/events"
	"github.com/noah-isme/repairshop-api/internal/health"
	"github.com/noah-isme/repairshop-api/internal/lock"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/tax"
)

const (
	metricsNamespace = "repairshop"
	redisPrefix      = "repairshop:"
)

// App holds the shared infrastructure and the domain services built on it.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Queries *dbgen.Queries
	Metrics *obs.DomainMetrics
	Events  *events.Bus

	Catalog *catalog.Service
	Bundles *bundle.Service
	Tax     *tax.Service
}

// New connects to Postgres and Redis and constructs every service. Callers must
// Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	a := &App{Config: cfg, Logger: logger}

	var err error
	if a.Pool, err = connectPostgres(ctx, cfg); err != nil {
		return nil, err
	}
	if a.Redis, err = connectRedis(ctx, cfg, logger); err != nil {
		a.Pool.Close()
		return nil, err
	}
	if err := a.buildServices(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildServices() error {
	cfg := a.Config
	a.Queries = dbgen.New(a.Pool)
	a.Metrics = obs.NewDomainMetrics(metricsNamespace, prometheus.DefaultRegisterer)
	a.Events = &events.Bus{
		Store: a.Queries,
		Notifiers: []events.Notifier{
			events.LogNotifier{Logger: obs.Component(a.Logger, "events")},
			events.MetricsNotifier{Metrics: a.Metrics},
		},
	}

	var err error
	a.Catalog, err = catalog.NewService(catalog.ServiceConfig{
		Queries:      a.Queries,
		Cache:        cache.NewJSON(a.Redis, redisPrefix+"cache:", cfg.CatalogCacheTTL),
		Logger:       obs.Component(a.Logger, "catalog"),
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}

	a.Bundles, err = bundle.NewService(bundle.ServiceConfig{
		Queries: a.Queries,
		Tx: db.Runner[bundle.Querier]{
			Pool:    a.Pool,
			Bind:    func(tx pgx.Tx) bundle.Querier { return dbgen.New(tx) },
			Timeout: cfg.DBTxTimeout,
		},
		Events:       a.Events,
		Metrics:      a.Metrics,
		Logger:       obs.Component(a.Logger, "bundle"),
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
	if err != nil {
		return fmt.Errorf("bundle service: %w", err)
	}

	a.Tax, err = tax.NewService(tax.ServiceConfig{
		Queries: a.Queries,
		Tx: db.Runner[tax.Querier]{
			Pool:    a.Pool,
			Bind:    func(tx pgx.Tx) tax.Querier { return dbgen.New(tx) },
			Timeout: cfg.DBTxTimeout,
		},
		Locker:   lock.Locker{Client: a.Redis, Prefix: redisPrefix + "lock:", Wait: cfg.TaxLockWait},
		LockTTL:  cfg.TaxLockTTL,
		Cache:    cache.NewJSON(a.Redis, redisPrefix+"cache:", cfg.TaxDueCacheTTL),
		Events:   a.Events,
		Metrics:  a.Metrics,
		Logger:   obs.Component(a.Logger, "tax"),
		Location: cfg.Timezone,
	})
	if err != nil {
		return fmt.Errorf("tax service: %w", err)
	}
	return nil
}

// Probes returns the readiness checks for Postgres and Redis.
func (a *App) Probes() []health.Probe {
	return []health.Probe{
		{Name: "postgres", Timeout: 500 * time.Millisecond, Check: a.Pool.Ping},
		{Name: "redis", Timeout: 300 * time.Millisecond, Check: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}},
	}
}

// AsynqRedis returns the connection options asynq clients and servers use.
func (a *App) AsynqRedis() (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(a.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url for asynq: %w", err)
	}
	return opt, nil
}

// Close releases the Redis client and the Postgres pool.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("close redis")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = cfg.ServiceName
	if cfg.DBMaxConns > 0 {
		poolConfig.MaxConns = cfg.DBMaxConns
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
