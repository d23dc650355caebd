package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlundqvist/agenda/internal/adapters/storage/memory"
	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/platform/clock"
)

// dashboardFixture wires a dashboard service and the task/event services used
// to seed it, all over one shared in-memory store.
type dashboardFixture struct {
	dash   *DashboardService
	tasks  *TaskService
	events *EventService
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	store := memory.New()
	clk := clock.At(testNow)
	logger := discardLogger()

	return &dashboardFixture{
		dash:   NewDashboardService(store.Tasks(), store.Events(), store, clk, logger),
		tasks:  NewTaskService(store.Tasks(), clk, logger, 100),
		events: NewEventService(store.Events(), clk, logger, nil, 100),
	}
}

func (f *dashboardFixture) seedTask(t *testing.T, title string, due *time.Time, status task.Status) {
	t.Helper()
	_, err := f.tasks.Create(context.Background(), &task.Task{Title: title, DueDate: due, Status: status})
	require.NoError(t, err)
}

func (f *dashboardFixture) seedEvent(t *testing.T, title string, start, end time.Time) {
	t.Helper()
	_, err := f.events.Create(context.Background(), &event.Event{Title: title, StartTime: start, EndTime: end})
	require.NoError(t, err)
}

func TestDashboardService_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newDashboardFixture(t)

	yesterday := testNow.AddDate(0, 0, -1)
	tomorrow := testNow.AddDate(0, 0, 1)

	f.seedTask(t, "overdue report", &yesterday, task.StatusPending)
	f.seedTask(t, "upcoming filing", &tomorrow, task.StatusPending)
	f.seedTask(t, "done already", &yesterday, task.StatusCompleted)
	f.seedTask(t, "no deadline", nil, task.StatusPending)

	f.seedEvent(t, "past standup", testNow.Add(-2*time.Hour), testNow.Add(-time.Hour))
	f.seedEvent(t, "afternoon review", testNow.Add(2*time.Hour), testNow.Add(3*time.Hour))
	f.seedEvent(t, "tomorrow planning", tomorrow, tomorrow.Add(time.Hour))

	stats, err := f.dash.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalTasks)
	assert.Equal(t, int64(1), stats.CompletedTasks)
	assert.Equal(t, int64(3), stats.PendingTasks)
	// Completed tasks past their due date do not count as overdue, and tasks
	// without a deadline never do.
	assert.Equal(t, int64(1), stats.OverdueTasks)
	assert.Equal(t, int64(3), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.UpcomingEvents)
}

func TestDashboardService_Stats_ConsistentUnderConcurrentWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newDashboardFixture(t)

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
			created, err := f.tasks.Create(ctx, &task.Task{Title: "churn"})
			if err != nil {
				return
			}
			if _, err := f.tasks.Complete(ctx, created.ID); err != nil {
				return
			}
		}
	}()

	// Every snapshot must be internally consistent while the writer runs.
	for i := 0; i < 50; i++ {
		stats, err := f.dash.Stats(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, stats.CompletedTasks, stats.TotalTasks)
		assert.GreaterOrEqual(t, stats.PendingTasks, int64(0))
	}

	close(stop)
	wg.Wait()
}

func TestDashboardService_Stats_Empty(t *testing.T) {
	t.Parallel()
	f := newDashboardFixture(t)

	stats, err := f.dash.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalTasks)
	assert.Equal(t, int64(0), stats.TotalEvents)
	assert.Equal(t, int64(0), stats.OverdueTasks)
}

func TestDashboardService_Upcoming(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("window and cap", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		in2 := testNow.AddDate(0, 0, 2)
		in5 := testNow.AddDate(0, 0, 5)
		in10 := testNow.AddDate(0, 0, 10)
		past := testNow.AddDate(0, 0, -1)

		f.seedTask(t, "due in two days", &in2, task.StatusPending)
		f.seedTask(t, "due in five days", &in5, task.StatusPending)
		f.seedTask(t, "due in ten days", &in10, task.StatusPending)
		f.seedTask(t, "already overdue", &past, task.StatusPending)

		f.seedEvent(t, "event in two days", in2, in2.Add(time.Hour))
		f.seedEvent(t, "event in ten days", in10, in10.Add(time.Hour))

		items, err := f.dash.Upcoming(ctx, 7, 5)
		require.NoError(t, err)

		// Overdue tasks and items beyond the window are excluded.
		require.Len(t, items.Tasks, 2)
		assert.Equal(t, "due in two days", items.Tasks[0].Title)
		assert.Equal(t, "due in five days", items.Tasks[1].Title)

		require.Len(t, items.Events, 1)
		assert.Equal(t, "event in two days", items.Events[0].Title)
	})

	t.Run("window endpoints are inclusive", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		edge := testNow.AddDate(0, 0, 7)
		f.seedTask(t, "due right now", &testNow, task.StatusPending)
		f.seedTask(t, "due at window edge", &edge, task.StatusPending)
		f.seedEvent(t, "starts at window edge", edge, edge.Add(time.Hour))

		items, err := f.dash.Upcoming(ctx, 7, 5)
		require.NoError(t, err)

		require.Len(t, items.Tasks, 2)
		assert.Equal(t, "due right now", items.Tasks[0].Title)
		assert.Equal(t, "due at window edge", items.Tasks[1].Title)

		require.Len(t, items.Events, 1)
		assert.Equal(t, "starts at window edge", items.Events[0].Title)
	})

	t.Run("limit caps each list independently", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		for i := 1; i <= 4; i++ {
			due := testNow.AddDate(0, 0, i)
			f.seedTask(t, "task", &due, task.StatusPending)
			f.seedEvent(t, "event", due.Add(time.Hour), due.Add(2*time.Hour))
		}

		items, err := f.dash.Upcoming(ctx, 7, 2)
		require.NoError(t, err)
		assert.Len(t, items.Tasks, 2)
		assert.Len(t, items.Events, 2)
	})

	t.Run("rejects non-positive parameters", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		_, err := f.dash.Upcoming(ctx, 0, 5)
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.dash.Upcoming(ctx, 7, 0)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestDashboardService_Calendar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("dense grid with empty days", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		due := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
		f.seedTask(t, "valentine errand", &due, task.StatusPending)
		f.seedEvent(t, "leap day party",
			time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 22, 0, 0, 0, time.UTC),
		)

		cal, err := f.dash.Calendar(ctx, 2024, time.February)
		require.NoError(t, err)

		assert.Equal(t, 2024, cal.Year)
		assert.Equal(t, time.February, cal.Month)
		require.Len(t, cal.Days, 29)

		// Every day is present with non-nil slices, populated or not.
		for i, day := range cal.Days {
			assert.Equal(t, i+1, day.Date.Day())
			assert.NotNil(t, day.Tasks)
			assert.NotNil(t, day.Events)
		}

		require.Len(t, cal.Days[13].Tasks, 1)
		assert.Equal(t, "valentine errand", cal.Days[13].Tasks[0].Title)
		assert.Empty(t, cal.Days[13].Events)

		require.Len(t, cal.Days[28].Events, 1)
		assert.Equal(t, "leap day party", cal.Days[28].Events[0].Title)
	})

	t.Run("multi-day event appears on every day it touches", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		f.seedEvent(t, "offsite",
			time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
		)

		cal, err := f.dash.Calendar(ctx, 2024, time.March)
		require.NoError(t, err)

		for day := 10; day <= 12; day++ {
			assert.Len(t, cal.Days[day-1].Events, 1, "day %d", day)
		}
		assert.Empty(t, cal.Days[8].Events)
		assert.Empty(t, cal.Days[12].Events)
	})

	t.Run("event spanning month boundary appears in both months", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		f.seedEvent(t, "new year gala",
			time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		)

		jan, err := f.dash.Calendar(ctx, 2024, time.January)
		require.NoError(t, err)
		assert.Len(t, jan.Days[30].Events, 1)

		feb, err := f.dash.Calendar(ctx, 2024, time.February)
		require.NoError(t, err)
		assert.Len(t, feb.Days[0].Events, 1)
	})

	t.Run("rejects out-of-range month and year", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		_, err := f.dash.Calendar(ctx, 2024, time.Month(13))
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.dash.Calendar(ctx, 0, time.June)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestDashboardService_Range(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("selects tasks by due date and events by intersection", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

		inside := start.Add(36 * time.Hour)
		outside := end.Add(time.Hour)
		f.seedTask(t, "inside range", &inside, task.StatusPending)
		f.seedTask(t, "outside range", &outside, task.StatusPending)
		f.seedTask(t, "no deadline", nil, task.StatusPending)

		f.seedEvent(t, "fully inside", inside, inside.Add(time.Hour))
		// Straddles the range start, so it intersects.
		f.seedEvent(t, "straddles start", start.Add(-time.Hour), start.Add(time.Hour))
		f.seedEvent(t, "after range", end.Add(time.Hour), end.Add(2*time.Hour))

		items, err := f.dash.Range(ctx, start, end)
		require.NoError(t, err)

		require.Len(t, items.Tasks, 1)
		assert.Equal(t, "inside range", items.Tasks[0].Title)

		require.Len(t, items.Events, 2)
		assert.True(t, items.Start.Equal(start))
		assert.True(t, items.End.Equal(end))
	})

	t.Run("end boundary is exclusive", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

		f.seedTask(t, "due exactly at end", &end, task.StatusPending)
		f.seedEvent(t, "starts exactly at end", end, end.Add(time.Hour))

		items, err := f.dash.Range(ctx, start, end)
		require.NoError(t, err)
		assert.Empty(t, items.Tasks)
		assert.Empty(t, items.Events)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		t.Parallel()
		f := newDashboardFixture(t)

		end := testNow.Add(-time.Hour)
		_, err := f.dash.Range(ctx, testNow, end)
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.dash.Range(ctx, testNow, testNow)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}
