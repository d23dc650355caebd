package ports

import (
	"context"
	"time"

	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/page"
	"github.com/jlundqvist/agenda/internal/domain/task"
)

// TaskService defines the service port for task operations.
// Implemented by the application layer; called by inbound adapters (handlers).
type TaskService interface {
	// Create validates and stores a new task, returning the created entity
	// with server-assigned fields (ID, timestamps). Tasks start pending
	// unless t.Status says otherwise.
	// Returns domain.ErrValidation if the task fails validation.
	Create(ctx context.Context, t *task.Task) (*task.Task, error)

	// Get returns a single task by ID.
	// Returns domain.ErrNotFound if the task does not exist.
	Get(ctx context.Context, id int64) (*task.Task, error)

	// Update merges the patch into the task and refreshes UpdatedAt. A patch
	// that sets the status goes through the same transition checks as
	// Complete/Reopen and can return their idempotency guard errors.
	// Returns domain.ErrNotFound if the task does not exist.
	Update(ctx context.Context, id int64, p task.Patch) (*task.Task, error)

	// Complete transitions the task pending -> completed.
	// Returns a *task.TransitionError if the task is already completed.
	Complete(ctx context.Context, id int64) (*task.Task, error)

	// Reopen transitions the task completed -> pending.
	// Returns a *task.TransitionError if the task is already pending.
	Reopen(ctx context.Context, id int64) (*task.Task, error)

	// Delete removes the task. No soft delete.
	// Returns domain.ErrNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns a page of tasks matching the filter.
	List(ctx context.Context, f task.Filter, p page.Request) (page.Result[task.Task], error)

	// BulkUpdate applies independent patches to multiple tasks concurrently
	// with partial success semantics: each item succeeds or fails on its
	// own, and per-item failures are collected in BulkUpdateResult.Errors.
	BulkUpdate(ctx context.Context, updates []TaskPatch) *BulkUpdateResult
}

// TaskPatch pairs a task ID with its patch for bulk operations.
type TaskPatch struct {
	TaskID int64
	Patch  task.Patch
}

// BulkUpdateError records a single failed task update within a bulk operation.
type BulkUpdateError struct {
	TaskID int64
	Err    error
}

// BulkUpdateResult holds the outcomes of a bulk update operation.
// Updated contains successfully updated tasks; Errors contains per-item failures.
type BulkUpdateResult struct {
	Updated []task.Task
	Errors  []BulkUpdateError
}

// EventService defines the service port for event operations. Create and
// Update enforce the global no-overlap invariant atomically with the write.
type EventService interface {
	// Create validates and stores a new event.
	// Returns domain.ErrValidation if end <= start or the title is empty.
	// Returns a *event.ConflictError if the interval overlaps a stored event.
	Create(ctx context.Context, e *event.Event) (*event.Event, error)

	// Get returns a single event by ID.
	// Returns domain.ErrNotFound if the event does not exist.
	Get(ctx context.Context, id int64) (*event.Event, error)

	// Update merges the patch, then runs the same ordering and conflict
	// checks as Create against the candidate post-update interval, excluding
	// the event itself from the overlap scan.
	Update(ctx context.Context, id int64, p event.Patch) (*event.Event, error)

	// Delete removes the event. Deletion has no conflict implications.
	// Returns domain.ErrNotFound if the event does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns a page of events matching the filter.
	List(ctx context.Context, f event.Filter, p page.Request) (page.Result[event.Event], error)
}

// DashboardService composes the task and event domains into derived read-only
// views. Results reflect a single logical snapshot per call and are
// recomputed on demand, never cached.
type DashboardService interface {
	// Stats returns aggregate counts relative to "now" at call time.
	Stats(ctx context.Context) (*Stats, error)

	// Upcoming returns tasks due and events starting in [now, now+days],
	// both endpoints inclusive, each list independently capped at `limit`
	// items and ordered by due date / start time ascending.
	Upcoming(ctx context.Context, days, limit int) (*UpcomingItems, error)

	// Calendar returns the dense month grid: every day of the month is
	// present, each with the tasks due that day and the events intersecting
	// that day, even when both lists are empty.
	Calendar(ctx context.Context, year int, month time.Month) (*CalendarMonth, error)

	// Range returns tasks with a due date in [start, end) and events whose
	// interval intersects [start, end).
	Range(ctx context.Context, start, end time.Time) (*RangeItems, error)
}

// Stats holds the dashboard aggregate counts. UpcomingEvents counts events
// with a start time at or after now; OverdueTasks counts pending tasks due
// before now.
type Stats struct {
	TotalTasks     int64
	CompletedTasks int64
	PendingTasks   int64
	TotalEvents    int64
	UpcomingEvents int64
	OverdueTasks   int64
}

// UpcomingItems pairs the next tasks and events inside the requested window.
type UpcomingItems struct {
	Tasks  []task.Task
	Events []event.Event
}

// CalendarDay is one cell of the month grid. Tasks and Events are never nil.
type CalendarDay struct {
	Date   time.Time
	Tasks  []task.Task
	Events []event.Event
}

// CalendarMonth is the dense grid for one calendar month: Days holds exactly
// as many entries as the month has days, in order.
type CalendarMonth struct {
	Year  int
	Month time.Month
	Days  []CalendarDay
}

// RangeItems holds the tasks and events selected by a date-range query.
type RangeItems struct {
	Start  time.Time
	End    time.Time
	Tasks  []task.Task
	Events []event.Event
}
