package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that EventRepository implements ports.EventRepository.
var _ ports.EventRepository = (*EventRepository)(nil)

// eventConflictLockID is the advisory lock key serializing event
// conflict-check-then-write transactions across connections and instances.
const eventConflictLockID int64 = 982451653

// EventRepository is the event view over the shared postgres store.
type EventRepository struct {
	store *Store
}

// WithTx runs fn inside a database transaction that holds the event advisory
// lock. The lock is released automatically at commit or rollback, so any two
// event transactions are serialized and an overlap scan followed by a write
// cannot interleave with another writer.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.store.q(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock($1)", eventConflictLockID); err != nil {
			return fmt.Errorf("acquire event lock: %w", err)
		}
		return fn(ctx)
	})
}

// WithReadTx delegates to the shared store read snapshot. No advisory lock:
// the lock only guards conflict-check-then-write sequences.
func (r *EventRepository) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithReadTx(ctx, fn)
}

const eventColumns = "id, title, description, start_time, end_time, created_at, updated_at"

// Insert stores a new event and returns it with the assigned ID.
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) (*event.Event, error) {
	out := *e
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO events (title, description, start_time, end_time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(), e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &out, nil
}

// FindByID returns the event with the given ID.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*event.Event, error) {
	row := r.store.q(ctx).QueryRow(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = $1", id)

	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindEvent, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}
	return e, nil
}

// Update replaces the stored event.
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, start_time = $3, end_time = $4, updated_at = $5
		 WHERE id = $6`,
		e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(), e.UpdatedAt.UTC(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: domain.KindEvent, ID: e.ID}
	}
	return nil
}

// Delete removes the stored event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.q(ctx).Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: domain.KindEvent, ID: id}
	}
	return nil
}

// List returns the filtered page of events and the total match count, ordered
// by start time then ID. A limit <= 0 means no limit.
func (r *EventRepository) List(ctx context.Context, f event.Filter, offset, limit int) ([]event.Event, int64, error) {
	where, args := eventWhere(f)

	total, err := r.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + eventColumns + " FROM events" + where +
		" ORDER BY start_time ASC, id ASC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.store.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []event.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return out, total, nil
}

// Count returns the number of events matching the filter.
func (r *EventRepository) Count(ctx context.Context, f event.Filter) (int64, error) {
	where, args := eventWhere(f)
	return r.count(ctx, where, args)
}

func (r *EventRepository) count(ctx context.Context, where string, args []any) (int64, error) {
	var total int64
	err := r.store.q(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM events"+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// FindOverlapping returns events whose half-open interval intersects span,
// excluding excludeID (0 excludes nothing), ordered by start time then ID.
func (r *EventRepository) FindOverlapping(ctx context.Context, span timespan.Span, excludeID int64) ([]event.Event, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		"SELECT "+eventColumns+` FROM events
		 WHERE start_time < $1 AND end_time > $2 AND id != $3
		 ORDER BY start_time ASC, id ASC`,
		span.End.UTC(), span.Start.UTC(), excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}
	defer rows.Close()

	out := []event.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}
	return out, nil
}

// eventWhere translates the filter into a WHERE clause and its arguments.
// The calendar window (Year/Month or Day) becomes an interval intersection.
func eventWhere(f event.Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.StartAfter != nil {
		conds = append(conds, "start_time >= "+arg(f.StartAfter.UTC()))
	}
	if f.StartBefore != nil {
		conds = append(conds, "start_time < "+arg(f.StartBefore.UTC()))
	}
	if f.EndAfter != nil {
		conds = append(conds, "end_time >= "+arg(f.EndAfter.UTC()))
	}
	if f.EndBefore != nil {
		conds = append(conds, "end_time < "+arg(f.EndBefore.UTC()))
	}
	if window, ok := f.Window(); ok {
		conds = append(conds, "start_time < "+arg(window.End.UTC())+" AND end_time > "+arg(window.Start.UTC()))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(row pgx.Row) (*event.Event, error) {
	var e event.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}
