package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)

// TaskRepository is the task view over the shared sqlite store.
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
	res, err := r.store.q(ctx).ExecContext(ctx,
		`INSERT INTO tasks (title, description, due_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, nanosPtr(t.DueDate), string(t.Status), nanos(t.CreatedAt), nanos(t.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task id: %w", err)
	}

	out := *t
	out.ID = id
	return &out, nil
}

// FindByID returns the task with the given ID.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindTask, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return t, nil
}

// Update replaces the stored task.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.store.q(ctx).ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, due_date = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, nanosPtr(t.DueDate), string(t.Status), nanos(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return requireRow(res, domain.KindTask, t.ID)
}

// Delete removes the stored task.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.store.q(ctx).ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireRow(res, domain.KindTask, id)
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

	if limit <= 0 {
		limit = -1 // sqlite treats a negative limit as "no limit"
	}
	query := "SELECT " + taskColumns + " FROM tasks" + where +
		" ORDER BY due_date IS NULL, due_date, id LIMIT ? OFFSET ?"
	rows, err := r.store.q(ctx).QueryContext(ctx, query, append(args, limit, offset)...)
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
	err := r.store.q(ctx).QueryRowContext(ctx,
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

	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.DueAfter != nil {
		conds = append(conds, "due_date IS NOT NULL AND due_date >= ?")
		args = append(args, nanos(*f.DueAfter))
	}
	if f.DueBefore != nil {
		conds = append(conds, "due_date IS NOT NULL AND due_date < ?")
		args = append(args, nanos(*f.DueBefore))
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

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var due sql.NullInt64
	var status string
	var created, updated int64

	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &status, &created, &updated); err != nil {
		return nil, err
	}

	if due.Valid {
		d := fromNanos(due.Int64)
		t.DueDate = &d
	}
	t.Status = task.Status(status)
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(updated)
	return &t, nil
}

// requireRow converts a zero-row mutation into a not-found error.
func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
