package ports

import (
	"context"

	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
)

// Transactor provides the atomic transaction boundary repositories must
// support. WithTx runs fn inside a single storage transaction: repository
// calls made with the context passed to fn observe and join that transaction,
// and everything commits or rolls back as one unit. If fn returns an error or
// the context is canceled mid-operation, no partial writes become visible.
//
// The event conflict check depends on a stronger property: two WithTx blocks
// that both mutate events must not interleave between the overlap scan and
// the write. Each adapter documents how it guarantees this (single-connection
// serialization, advisory locking, or a global mutex).
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// WithReadTx runs fn inside a read-only transaction where every query
	// observes one consistent snapshot of the store, even while concurrent
	// writers commit. Used by aggregated reads that combine several queries
	// into one logical view.
	WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaskRepository is the persistence port for tasks.
// All methods are transaction-aware: when the context carries a transaction
// started by WithTx, they execute inside it.
type TaskRepository interface {
	Transactor

	// Insert stores a new task and returns it with the storage-assigned ID.
	Insert(ctx context.Context, t *task.Task) (*task.Task, error)

	// FindByID returns a single task.
	// Returns a *domain.NotFoundError if the task does not exist.
	FindByID(ctx context.Context, id int64) (*task.Task, error)

	// Update persists all fields of an existing task.
	// Returns a *domain.NotFoundError if the task does not exist.
	Update(ctx context.Context, t *task.Task) error

	// Delete removes a task.
	// Returns a *domain.NotFoundError if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns tasks matching the filter, ordered by due date ascending
	// (tasks without a due date last) then by ID, plus the total number of
	// matching rows ignoring offset/limit. A limit <= 0 means no limit.
	List(ctx context.Context, f task.Filter, offset, limit int) ([]task.Task, int64, error)

	// Count returns the number of tasks matching the filter.
	Count(ctx context.Context, f task.Filter) (int64, error)
}

// EventRepository is the persistence port for events. Same shape as
// TaskRepository plus the overlap scan used by the conflict check.
type EventRepository interface {
	Transactor

	// Insert stores a new event and returns it with the storage-assigned ID.
	Insert(ctx context.Context, e *event.Event) (*event.Event, error)

	// FindByID returns a single event.
	// Returns a *domain.NotFoundError if the event does not exist.
	FindByID(ctx context.Context, id int64) (*event.Event, error)

	// Update persists all fields of an existing event.
	// Returns a *domain.NotFoundError if the event does not exist.
	Update(ctx context.Context, e *event.Event) error

	// Delete removes an event.
	// Returns a *domain.NotFoundError if the event does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns events matching the filter, ordered by start time
	// ascending then by ID, plus the total matching row count.
	// A limit <= 0 means no limit.
	List(ctx context.Context, f event.Filter, offset, limit int) ([]event.Event, int64, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, f event.Filter) (int64, error)

	// FindOverlapping returns stored events whose interval overlaps span,
	// excluding the event with excludeID (0 excludes nothing). Must be called
	// inside the same WithTx transaction as the mutating write it guards.
	FindOverlapping(ctx context.Context, span timespan.Span, excludeID int64) ([]event.Event, error)
}
