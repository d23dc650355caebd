package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)

// TaskRepository is the task view over the shared postgres store.
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

const taskColumns = "id, title, description, due_date, status, created_at, updated_at"

// Insert stores a new task and returns it with the assigned ID.
func (r *TaskRepository) Insert(ctx context.Context, t *task.Task) (*task.Task, error) {
	out := *t
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO tasks (title, description, due_date, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		t.Title, t.Description, utcPtr(t.DueDate), string(t.Status), t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &out, nil
}

// FindByID returns the task with the given ID.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	row := r.store.q(ctx).QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindTask, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return t, nil
}

// Update replaces the stored task.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, due_date = $3, status = $4, updated_at = $5
		 WHERE id = $6`,
		t.Title, t.Description, utcPtr(t.DueDate), string(t.Status), t.UpdatedAt.UTC(), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: domain.KindTask, ID: t.ID}
	}
	return nil
}

// Delete removes the stored task.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.q(ctx).Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: domain.KindTask, ID: id}
	}
	return nil
}

// List returns the filtered page of tasks and the total match count. Results
// are ordered by due date ascending with undated tasks last, then by ID.
// A limit <= 0 means no limit.
func (r *TaskRepository) List(ctx context.Context, f task.Filter, offset, limit int) ([]task.Task, int64, error) {
	where, args := taskWhere(f)

	total, err := r.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + taskColumns + " FROM tasks" + where +
		" ORDER BY due_date ASC NULLS LAST, id ASC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.store.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return out, total, nil
}

// Count returns the number of tasks matching the filter.
func (r *TaskRepository) Count(ctx context.Context, f task.Filter) (int64, error) {
	where, args := taskWhere(f)
	return r.count(ctx, where, args)
}

func (r *TaskRepository) count(ctx context.Context, where string, args []any) (int64, error) {
	var total int64
	err := r.store.q(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM tasks"+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

// taskWhere translates the filter into a WHERE clause and its arguments.
// Due-date predicates only ever match dated tasks, mirroring task.Filter.Matches.
func taskWhere(f task.Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(string(f.Status)))
	}
	if f.DueAfter != nil {
		conds = append(conds, "due_date >= "+arg(f.DueAfter.UTC()))
	}
	if f.DueBefore != nil {
		conds = append(conds, "due_date < "+arg(f.DueBefore.UTC()))
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

func scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	var status string

	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// utcPtr normalizes an optional time to UTC for storage.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
