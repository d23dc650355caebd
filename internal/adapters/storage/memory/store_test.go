package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
)

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New()
	tasks := store.Tasks()
	events := store.Events()

	seeded, err := tasks.Insert(ctx, &task.Task{Title: "keep me", Status: task.StatusPending})
	if err != nil {
		t.Fatalf("Insert() = %v", err)
	}

	boom := errors.New("boom")
	err = store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := tasks.Insert(ctx, &task.Task{Title: "doomed", Status: task.StatusPending}); err != nil {
			return err
		}
		if _, err := events.Insert(ctx, &event.Event{
			Title:     "doomed event",
			StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		}); err != nil {
			return err
		}
		if err := tasks.Delete(ctx, seeded.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() = %v, want boom", err)
	}

	// All three mutations are undone.
	if _, err := tasks.FindByID(ctx, seeded.ID); err != nil {
		t.Errorf("seeded task gone after rollback: %v", err)
	}
	if n, _ := tasks.Count(ctx, task.Filter{}); n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
	if n, _ := events.Count(ctx, event.Filter{}); n != 0 {
		t.Errorf("event count = %d, want 0", n)
	}
}

func TestStore_WithTx_CommitsOnSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New()
	tasks := store.Tasks()

	err := store.WithTx(ctx, func(ctx context.Context) error {
		_, err := tasks.Insert(ctx, &task.Task{Title: "persisted", Status: task.StatusPending})
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() = %v", err)
	}

	if n, _ := tasks.Count(ctx, task.Filter{}); n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
}

func TestStore_WithTx_RestoresIDSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New()
	tasks := store.Tasks()

	err := store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := tasks.Insert(ctx, &task.Task{Title: "a", Status: task.StatusPending}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("WithTx() = nil, want error")
	}

	created, err := tasks.Insert(ctx, &task.Task{Title: "b", Status: task.StatusPending})
	if err != nil {
		t.Fatalf("Insert() = %v", err)
	}
	if created.ID != 1 {
		t.Errorf("ID after rollback = %d, want 1 (sequence restored)", created.ID)
	}
}

func TestStore_WithReadTx_ConsistentCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New()
	tasks := store.Tasks()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := tasks.Insert(ctx, &task.Task{Title: "writer", Status: task.StatusPending}); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		err := store.WithReadTx(ctx, func(ctx context.Context) error {
			first, err := tasks.Count(ctx, task.Filter{})
			if err != nil {
				return err
			}
			second, err := tasks.Count(ctx, task.Filter{})
			if err != nil {
				return err
			}
			if first != second {
				t.Errorf("counts inside one read transaction differ: %d then %d", first, second)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithReadTx() = %v", err)
		}
	}

	close(stop)
	wg.Wait()
}

func TestEventRepository_FindOverlapping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New()
	events := store.Events()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	stored, err := events.Insert(ctx, &event.Event{
		Title:     "meeting",
		StartTime: base,
		EndTime:   base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Insert() = %v", err)
	}

	overlapping, err := events.FindOverlapping(ctx, timespan.New(base.Add(30*time.Minute), base.Add(90*time.Minute)), 0)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(overlapping) != 1 {
		t.Fatalf("got %d overlaps, want 1", len(overlapping))
	}

	// Touching at the boundary is not an overlap.
	touching, err := events.FindOverlapping(ctx, timespan.New(base.Add(time.Hour), base.Add(2*time.Hour)), 0)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(touching) != 0 {
		t.Errorf("touching span reported %d overlaps, want 0", len(touching))
	}

	// The excluded ID is skipped.
	excluded, err := events.FindOverlapping(ctx, stored.Span(), stored.ID)
	if err != nil {
		t.Fatalf("FindOverlapping() = %v", err)
	}
	if len(excluded) != 0 {
		t.Errorf("self-excluded scan reported %d overlaps, want 0", len(excluded))
	}
}

func TestTaskRepository_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tasks := New().Tasks()

	if _, err := tasks.FindByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID() = %v, want not found", err)
	}
	if err := tasks.Update(ctx, &task.Task{ID: 1, Title: "x", Status: task.StatusPending}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() = %v, want not found", err)
	}
	if err := tasks.Delete(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() = %v, want not found", err)
	}
}
