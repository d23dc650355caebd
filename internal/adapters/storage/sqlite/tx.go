package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// txKey carries the active *sql.Tx through the context so that repository
// calls made inside WithTx join the same transaction.
type txKey struct{}

// querier is the subset of *sql.DB / *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction stashed in ctx, or the plain database handle.
func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx runs fn inside a database transaction. Repository calls that receive
// the callback context run on that transaction. If ctx already carries a
// transaction, fn joins it and the outer WithTx owns commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithReadTx runs fn inside a transaction whose queries all observe one
// snapshot. The store holds a single connection, so a plain transaction
// already serializes against every writer.
func (s *Store) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.WithTx(ctx, fn)
}
