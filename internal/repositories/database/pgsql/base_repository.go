package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is an interface that both *pgxpool.Pool and pgx.Tx satisfy.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
	tx   pgx.Tx // current transaction, if any
}

// DB returns the current transaction if available, otherwise the pool.
func (r *BaseRepository) DB() DB {
	if r.tx != nil {
		return r.tx
	}
	return r.Pool
}

// SetTx sets the current transaction.
func (r *BaseRepository) SetTx(tx pgx.Tx) {
	r.tx = tx
}

// GetTx returns the current transaction, if any.
func (r *BaseRepository) GetTx() pgx.Tx {
	return r.tx
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	if r.tx != nil {
		return r.tx, nil
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	r.tx = tx
	return tx, nil
}

// Commit commits the given transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if tx == r.tx {
		r.tx = nil
	}
	return nil
}

// Rollback rolls back the given transaction.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	if tx == r.tx {
		r.tx = nil
	}
	return nil
}

// WithTx runs fn within a transaction, committing on success and rolling
// back on error or panic.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = r.Rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	return r.Commit(ctx, tx)
}
