// Package db holds the transaction runner, migrations and pgtype helpers shared by the domain services.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTxTimeout bounds a single transaction when no timeout is configured.
const DefaultTxTimeout = 30 * time.Second

// Runner executes callbacks inside one database transaction. Bind converts the
// transaction into whatever query set the caller works with.
type Runner[Q any] struct {
	Pool    *pgxpool.Pool
	Bind    func(pgx.Tx) Q
	Timeout time.Duration
}

// InTx begins a transaction, hands the bound queries to fn and commits when fn
// returns nil. Any error rolls the whole transaction back.
func (r Runner[Q]) InTx(ctx context.Context, fn func(Q) error) error {
	if r.Pool == nil || r.Bind == nil {
		return errors.New("db: runner not configured")
	}
	if fn == nil {
		return errors.New("db: callback not provided")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(r.Bind(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
