// Package postgres provides a storage adapter backed by PostgreSQL through
// jackc/pgx. It backs the `postgres` storage driver for multi-instance
// deployments where the sqlite single-writer model does not apply.
//
// Concurrency discipline: event mutations take a transaction-scoped advisory
// lock before the overlap scan, so conflict-check-then-write sequences are
// serialized across all connections and instances sharing the database.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the pgx connection pool shared by both repositories.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at dsn, verifies the connection and ensures
// the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{store: s}
}

// Events returns the event repository view of the store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "postgres"
}

// HealthCheck implements ports.HealthChecker by pinging the pool.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    TIMESTAMPTZ,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_due    ON tasks (due_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);

	CREATE TABLE IF NOT EXISTS events (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time  TIMESTAMPTZ NOT NULL,
		end_time    TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_start ON events (start_time);
	CREATE INDEX IF NOT EXISTS idx_events_end   ON events (end_time);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}
