package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// txKey carries the active pgx.Tx through the context so that repository
// calls made inside WithTx join the same transaction.
type txKey struct{}

// querier is the subset of *pgxpool.Pool / pgx.Tx the repositories need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q returns the transaction stashed in ctx, or the connection pool.
func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// WithTx runs fn inside a database transaction. Repository calls that receive
// the callback context run on that transaction. If ctx already carries a
// transaction, fn joins it and the outer WithTx owns commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.withTx(ctx, pgx.TxOptions{}, fn)
}

// WithReadTx runs fn inside a read-only REPEATABLE READ transaction. Under
// the default READ COMMITTED level each statement gets its own snapshot;
// REPEATABLE READ pins one snapshot for the whole callback, so multi-query
// reads stay mutually consistent.
func (s *Store) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.withTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) withTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
