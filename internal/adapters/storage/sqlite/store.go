// Package sqlite provides the default storage adapter backed by
// modernc.org/sqlite through database/sql.
//
// Concurrency discipline: the pool is capped at a single connection, so every
// transaction (and therefore every event conflict-check-then-write) is fully
// serialized at the store boundary. WAL mode plus a busy timeout keeps that
// single writer responsive. Timestamps are stored as integer Unix nanoseconds
// (UTC) so that interval comparisons are plain integer comparisons.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// Store wraps the sqlite database handle shared by both repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: serializes all transactions, which is what the event
	// conflict contract requires.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenMemory opens an ephemeral in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
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
	return "sqlite"
}

// HealthCheck implements ports.HealthChecker by pinging the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    INTEGER,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_due    ON tasks(due_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time  INTEGER NOT NULL,
		end_time    INTEGER NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_time);
	CREATE INDEX IF NOT EXISTS idx_events_end   ON events(end_time);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// nanos converts a time to its stored representation.
func nanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

// nanosPtr converts an optional time to its stored representation.
func nanosPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return nanos(*t)
}

// fromNanos converts a stored timestamp back to a UTC time.
func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
