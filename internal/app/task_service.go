// Package app provides application services that implement the service ports
// by coordinating domain logic, the injected clock, and repository ports.
// Every mutating operation runs inside a repository transaction so that a
// request abandoned mid-operation leaves no partial writes.
package app

import (
	"context"
	"log/slog"

	"github.com/jlundqvist/agenda/internal/app/fanout"
	"github.com/jlundqvist/agenda/internal/domain/page"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/platform/clock"
	"github.com/jlundqvist/agenda/internal/ports"
)

// bulkUpdateWorkers bounds the concurrency of bulk task updates. Each item
// commits independently, so a small pool is enough to hide storage latency.
const bulkUpdateWorkers = 4

// Compile-time check that TaskService implements ports.TaskService.
var _ ports.TaskService = (*TaskService)(nil)

// TaskService implements ports.TaskService. It owns the task lifecycle:
// validation, timestamp assignment, and the status state machine. Status can
// only change through the transition methods on the entity, whether invoked
// via Complete/Reopen or via a patch that sets the status field.
type TaskService struct {
	tasks       ports.TaskRepository
	clock       clock.Clock
	logger      *slog.Logger
	maxPageSize int
}

// NewTaskService creates a TaskService. maxPageSize caps the page size of
// List requests; values <= 0 fall back to the page package default cap.
func NewTaskService(tasks ports.TaskRepository, clk clock.Clock, logger *slog.Logger, maxPageSize int) *TaskService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TaskService{
		tasks:       tasks,
		clock:       clk,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// Create validates and stores a new task. Tasks start pending unless the
// caller explicitly sets a status.
func (s *TaskService) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	s.logger.InfoContext(ctx, "creating task", slog.String("title", t.Title))

	if t.Status == "" {
		t.Status = task.StatusPending
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	created, err := s.tasks.Insert(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create task",
			slog.String("operation", "Create"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return created, nil
}

// Get returns a single task by ID.
func (s *TaskService) Get(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch task",
			slog.String("operation", "Get"),
			slog.Int64("task_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return t, nil
}

// Update merges the patch into the stored task inside a transaction, so the
// read-modify-write cannot lose a concurrent update. A patch that sets the
// status goes through the entity transition checks and preserves the
// idempotency guard errors.
func (s *TaskService) Update(ctx context.Context, id int64, p task.Patch) (*task.Task, error) {
	s.logger.InfoContext(ctx, "updating task", slog.Int64("task_id", id))

	var updated *task.Task
	err := s.tasks.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Apply(t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}
		t.UpdatedAt = s.clock.Now()
		if err := s.tasks.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update task",
			slog.String("operation", "Update"),
			slog.Int64("task_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return updated, nil
}

// Complete transitions the task pending -> completed.
func (s *TaskService) Complete(ctx context.Context, id int64) (*task.Task, error) {
	s.logger.InfoContext(ctx, "completing task", slog.Int64("task_id", id))
	return s.transition(ctx, "Complete", id, (*task.Task).Complete)
}

// Reopen transitions the task completed -> pending.
func (s *TaskService) Reopen(ctx context.Context, id int64) (*task.Task, error) {
	s.logger.InfoContext(ctx, "reopening task", slog.Int64("task_id", id))
	return s.transition(ctx, "Reopen", id, (*task.Task).Reopen)
}

// transition runs a status transition as an atomic read-modify-write. A
// failed transition rolls back and leaves the stored status untouched.
func (s *TaskService) transition(ctx context.Context, op string, id int64, fn func(*task.Task) error) (*task.Task, error) {
	var updated *task.Task
	err := s.tasks.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		t.UpdatedAt = s.clock.Now()
		if err := s.tasks.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "task transition failed",
			slog.String("operation", op),
			slog.Int64("task_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return updated, nil
}

// Delete removes the task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting task", slog.Int64("task_id", id))

	if err := s.tasks.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete task",
			slog.String("operation", "Delete"),
			slog.Int64("task_id", id),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// List returns a page of tasks matching the filter. Paging is normalized
// before the repository count+fetch; a page beyond the last yields empty
// data with the totals intact.
func (s *TaskService) List(ctx context.Context, f task.Filter, p page.Request) (page.Result[task.Task], error) {
	p = p.Normalize(s.maxPageSize)

	rows, total, err := s.tasks.List(ctx, f, p.Offset(), p.Size)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list tasks",
			slog.String("operation", "List"),
			slog.Any("error", err),
		)
		return page.Result[task.Task]{}, err
	}

	return page.NewResult(rows, total, p), nil
}

// BulkUpdate applies independent patches to multiple tasks concurrently with
// partial success semantics: each item commits or fails on its own, and
// per-item failures are collected rather than aborting the batch.
func (s *TaskService) BulkUpdate(ctx context.Context, updates []ports.TaskPatch) *ports.BulkUpdateResult {
	s.logger.InfoContext(ctx, "bulk updating tasks", slog.Int("count", len(updates)))

	results := fanout.Run(ctx, bulkUpdateWorkers, updates,
		func(ctx context.Context, u ports.TaskPatch) (*task.Task, error) {
			return s.Update(ctx, u.TaskID, u.Patch)
		})

	out := &ports.BulkUpdateResult{}
	for i, r := range results {
		if r.Err != nil {
			out.Errors = append(out.Errors, ports.BulkUpdateError{
				TaskID: updates[i].TaskID,
				Err:    r.Err,
			})
			continue
		}
		out.Updated = append(out.Updated, *r.Value)
	}
	return out
}
