package memory

import (
	"context"
	"sort"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)

// TaskRepository is the task view over the shared in-memory store.
type TaskRepository struct {
	store *Store
}

// WithTx delegates to the shared store transaction.
func (r *TaskRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTx(ctx, fn)
}

// WithReadTx delegates to the shared store read snapshot.
func (r *TaskRepository) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithReadTx(ctx, fn)
}

// Insert stores a new task and assigns the next ID.
func (r *TaskRepository) Insert(ctx context.Context, t *task.Task) (*task.Task, error) {
	defer r.store.lock(ctx)()

	stored := *t
	stored.ID = r.store.nextTask
	r.store.nextTask++
	r.store.tasks[stored.ID] = stored

	out := stored
	return &out, nil
}

// FindByID returns a copy of the stored task.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	defer r.store.lock(ctx)()

	t, ok := r.store.tasks[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindTask, ID: id}
	}
	out := t
	return &out, nil
}

// Update replaces the stored task.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.tasks[t.ID]; !ok {
		return &domain.NotFoundError{Kind: domain.KindTask, ID: t.ID}
	}
	r.store.tasks[t.ID] = *t
	return nil
}

// Delete removes the stored task.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.tasks[id]; !ok {
		return &domain.NotFoundError{Kind: domain.KindTask, ID: id}
	}
	delete(r.store.tasks, id)
	return nil
}

// List evaluates the filter in memory and pages the sorted matches.
func (r *TaskRepository) List(ctx context.Context, f task.Filter, offset, limit int) ([]task.Task, int64, error) {
	defer r.store.lock(ctx)()

	matches := r.matches(f)
	total := int64(len(matches))
	return pageSlice(matches, offset, limit), total, nil
}

// Count returns the number of tasks matching the filter.
func (r *TaskRepository) Count(ctx context.Context, f task.Filter) (int64, error) {
	defer r.store.lock(ctx)()

	return int64(len(r.matches(f))), nil
}

// matches returns filtered tasks ordered by due date ascending (tasks without
// a due date last), then by ID. Caller must hold the store mutex.
func (r *TaskRepository) matches(f task.Filter) []task.Task {
	out := make([]task.Task, 0, len(r.store.tasks))
	for _, t := range r.store.tasks {
		if f.Matches(&t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		default:
			return a.Before(*b)
		}
	})
	return out
}

// pageSlice applies offset/limit to a sorted slice. A limit <= 0 means no
// limit. The result is never nil.
func pageSlice[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
