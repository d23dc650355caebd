package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that EventRepository implements ports.EventRepository.
var _ ports.EventRepository = (*EventRepository)(nil)

// EventRepository is the event view over the shared sqlite store.
type EventRepository struct {
	store *Store
}

// WithTx delegates to the shared store transaction.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTx(ctx, fn)
}

// WithReadTx delegates to the shared store read snapshot.
func (r *EventRepository) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithReadTx(ctx, fn)
}

const eventColumns = "id, title, description, start_time, end_time, created_at, updated_at"

// Insert stores a new event and returns it with the assigned ID.
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) (*event.Event, error) {
	res, err := r.store.q(ctx).ExecContext(ctx,
		`INSERT INTO events (title, description, start_time, end_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, nanos(e.StartTime), nanos(e.EndTime), nanos(e.CreatedAt), nanos(e.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert event id: %w", err)
	}

	out := *e
	out.ID = id
	return &out, nil
}

// FindByID returns the event with the given ID.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*event.Event, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindEvent, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}
	return e, nil
}

// Update replaces the stored event.
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	res, err := r.store.q(ctx).ExecContext(ctx,
		`UPDATE events
		 SET title = ?, description = ?, start_time = ?, end_time = ?, updated_at = ?
		 WHERE id = ?`,
		e.Title, e.Description, nanos(e.StartTime), nanos(e.EndTime), nanos(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	return requireRow(res, domain.KindEvent, e.ID)
}

// Delete removes the stored event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.store.q(ctx).ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return requireRow(res, domain.KindEvent, id)
}

// List returns the filtered page of events and the total match count, ordered
// by start time then ID. A limit <= 0 means no limit.
func (r *EventRepository) List(ctx context.Context, f event.Filter, offset, limit int) ([]event.Event, int64, error) {
	where, args := eventWhere(f)

	total, err := r.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = -1 // sqlite treats a negative limit as "no limit"
	}
	query := "SELECT " + eventColumns + " FROM events" + where +
		" ORDER BY start_time, id LIMIT ? OFFSET ?"
	rows, err := r.store.q(ctx).QueryContext(ctx, query, append(args, limit, offset)...)
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
	err := r.store.q(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events"+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// FindOverlapping returns events whose half-open interval intersects span,
// excluding excludeID (0 excludes nothing), ordered by start time then ID.
func (r *EventRepository) FindOverlapping(ctx context.Context, span timespan.Span, excludeID int64) ([]event.Event, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx,
		"SELECT "+eventColumns+` FROM events
		 WHERE start_time < ? AND end_time > ? AND id != ?
		 ORDER BY start_time, id`,
		nanos(span.End), nanos(span.Start), excludeID,
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

	if f.StartAfter != nil {
		conds = append(conds, "start_time >= ?")
		args = append(args, nanos(*f.StartAfter))
	}
	if f.StartBefore != nil {
		conds = append(conds, "start_time < ?")
		args = append(args, nanos(*f.StartBefore))
	}
	if f.EndAfter != nil {
		conds = append(conds, "end_time >= ?")
		args = append(args, nanos(*f.EndAfter))
	}
	if f.EndBefore != nil {
		conds = append(conds, "end_time < ?")
		args = append(args, nanos(*f.EndBefore))
	}
	if window, ok := f.Window(); ok {
		conds = append(conds, "start_time < ? AND end_time > ?")
		args = append(args, nanos(window.End), nanos(window.Start))
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, needle, needle)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var e event.Event
	var start, end, created, updated int64

	if err := row.Scan(&e.ID, &e.Title, &e.Description, &start, &end, &created, &updated); err != nil {
		return nil, err
	}

	e.StartTime = fromNanos(start)
	e.EndTime = fromNanos(end)
	e.CreatedAt = fromNanos(created)
	e.UpdatedAt = fromNanos(updated)
	return &e, nil
}
