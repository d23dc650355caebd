package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTask(t *testing.T, repo *TaskRepository, title string, due *time.Time, status task.Status) *task.Task {
	t.Helper()

	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	created, err := repo.Insert(context.Background(), &task.Task{
		Title:     title,
		DueDate:   due,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert(%q) = %v", title, err)
	}
	return created
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Tasks()

	due := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	created := seedTask(t, repo, "file report", &due, task.StatusPending)
	if created.ID == 0 {
		t.Fatal("Insert did not assign an ID")
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() = %v", err)
	}
	if got.Title != "file report" || got.Status != task.StatusPending {
		t.Errorf("got %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
	if loc := got.DueDate.Location(); loc != time.UTC {
		t.Errorf("DueDate zone = %v, want UTC", loc)
	}

	got.Title = "file amended report"
	got.Status = task.StatusCompleted
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() = %v", err)
	}

	reread, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() = %v", err)
	}
	if reread.Title != "file amended report" || reread.Status != task.StatusCompleted {
		t.Errorf("after update got %+v", reread)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID after delete = %v, want not found", err)
	}
}

func TestTaskRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Tasks()

	if _, err := repo.FindByID(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID() = %v, want not found", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() = %v, want not found", err)
	}
	err := repo.Update(ctx, &task.Task{ID: 99, Title: "ghost", Status: task.StatusPending})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() = %v, want not found", err)
	}
}

func TestTaskRepository_ListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Tasks()

	early := time.Date(2024, 1, 21, 9, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 27, 9, 0, 0, 0, time.UTC)
	seedTask(t, repo, "later", &late, task.StatusPending)
	seedTask(t, repo, "no deadline", nil, task.StatusCompleted)
	seedTask(t, repo, "sooner", &early, task.StatusPending)

	t.Run("undated last", func(t *testing.T) {
		rows, total, err := repo.List(ctx, task.Filter{}, 0, 0)
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if total != 3 || len(rows) != 3 {
			t.Fatalf("total = %d, rows = %d; want 3, 3", total, len(rows))
		}
		want := []string{"sooner", "later", "no deadline"}
		for i, w := range want {
			if rows[i].Title != w {
				t.Errorf("rows[%d] = %q, want %q", i, rows[i].Title, w)
			}
		}
	})

	t.Run("offset and limit", func(t *testing.T) {
		rows, total, err := repo.List(ctx, task.Filter{}, 1, 1)
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(rows) != 1 || rows[0].Title != "later" {
			t.Errorf("rows = %+v, want just %q", rows, "later")
		}
	})

	t.Run("due window skips undated", func(t *testing.T) {
		cutoff := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
		rows, _, err := repo.List(ctx, task.Filter{DueBefore: &cutoff}, 0, 0)
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "sooner" {
			t.Errorf("rows = %+v, want just %q", rows, "sooner")
		}
	})

	t.Run("status filter", func(t *testing.T) {
		n, err := repo.Count(ctx, task.Filter{Status: task.StatusCompleted})
		if err != nil {
			t.Fatalf("Count() = %v", err)
		}
		if n != 1 {
			t.Errorf("Count = %d, want 1", n)
		}
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		rows, _, err := repo.List(ctx, task.Filter{Search: "SOON"}, 0, 0)
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "sooner" {
			t.Errorf("rows = %+v, want just %q", rows, "sooner")
		}
	})
}

func TestEventRepository_OverlapScan(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Events()

	base := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	now := base.Add(-time.Hour)
	stored, err := repo.Insert(ctx, &event.Event{
		Title:     "meeting",
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert() = %v", err)
	}

	overlapping, err := repo.FindOverlapping(ctx, timespan.New(base.Add(30*time.Minute), base.Add(90*time.Minute)), 0)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(overlapping) != 1 || overlapping[0].ID != stored.ID {
		t.Fatalf("overlapping = %+v, want the stored event", overlapping)
	}

	touching, err := repo.FindOverlapping(ctx, timespan.New(base.Add(time.Hour), base.Add(2*time.Hour)), 0)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(touching) != 0 {
		t.Errorf("touching span reported %d overlaps, want 0", len(touching))
	}

	excluded, err := repo.FindOverlapping(ctx, stored.Span(), stored.ID)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(excluded) != 0 {
		t.Errorf("self-excluded scan reported %d overlaps, want 0", len(excluded))
	}
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()

	store := openTestStore(t)
	tasks := store.Tasks()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
		if _, err := tasks.Insert(ctx, &task.Task{
			Title: "doomed", Status: task.StatusPending, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() = %v, want boom", err)
	}

	n, err := tasks.Count(ctx, task.Filter{})
	if err != nil {
		t.Fatalf("Count() = %v", err)
	}
	if n != 0 {
		t.Errorf("task count after rollback = %d, want 0", n)
	}
}

func TestStore_WithReadTx_ReadsCommittedState(t *testing.T) {
	ctx := context.Background()

	store := openTestStore(t)
	tasks := store.Tasks()
	seedTask(t, tasks, "snapshot me", nil, task.StatusPending)

	err := store.WithReadTx(ctx, func(ctx context.Context) error {
		n, err := tasks.Count(ctx, task.Filter{})
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("count inside read transaction = %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithReadTx() = %v", err)
	}
}

func TestStore_Migrate_Idempotent(t *testing.T) {
	store := openTestStore(t)

	// Running migrations again on an up-to-date schema is a no-op.
	if err := store.migrate(); err != nil {
		t.Fatalf("second migrate() = %v", err)
	}
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
}
