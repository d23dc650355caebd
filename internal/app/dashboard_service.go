package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
	"github.com/jlundqvist/agenda/internal/platform/clock"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that DashboardService implements ports.DashboardService.
var _ ports.DashboardService = (*DashboardService)(nil)

// DashboardService implements ports.DashboardService by composing read-only
// queries over the task and event repositories. Each view runs its queries
// inside one read transaction so the result reflects a single logical
// snapshot, but nothing is locked against concurrent writers and nothing is
// cached between calls.
type DashboardService struct {
	tasks  ports.TaskRepository
	events ports.EventRepository
	tx     ports.Transactor
	clock  clock.Clock
	logger *slog.Logger
}

// NewDashboardService creates a DashboardService. tx must span both
// repositories (the shared storage adapter satisfies this).
func NewDashboardService(tasks ports.TaskRepository, events ports.EventRepository, tx ports.Transactor, clk clock.Clock, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DashboardService{
		tasks:  tasks,
		events: events,
		tx:     tx,
		clock:  clk,
		logger: logger,
	}
}

// Stats computes the aggregate counts relative to the clock's now.
func (s *DashboardService) Stats(ctx context.Context) (*ports.Stats, error) {
	now := s.clock.Now()

	var stats ports.Stats
	err := s.tx.WithReadTx(ctx, func(ctx context.Context) error {
		total, err := s.tasks.Count(ctx, task.Filter{})
		if err != nil {
			return err
		}
		completed, err := s.tasks.Count(ctx, task.Filter{Status: task.StatusCompleted})
		if err != nil {
			return err
		}
		overdue, err := s.tasks.Count(ctx, task.Filter{Status: task.StatusPending, DueBefore: &now})
		if err != nil {
			return err
		}
		totalEvents, err := s.events.Count(ctx, event.Filter{})
		if err != nil {
			return err
		}
		upcoming, err := s.events.Count(ctx, event.Filter{StartAfter: &now})
		if err != nil {
			return err
		}

		stats = ports.Stats{
			TotalTasks:     total,
			CompletedTasks: completed,
			PendingTasks:   total - completed,
			TotalEvents:    totalEvents,
			UpcomingEvents: upcoming,
			OverdueTasks:   overdue,
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to compute dashboard stats",
			slog.String("operation", "Stats"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return &stats, nil
}

// Upcoming returns tasks due and events starting in [now, now+days], both
// endpoints inclusive. Each list is independently capped at `limit` items
// and ordered ascending by due date / start time.
func (s *DashboardService) Upcoming(ctx context.Context, days, limit int) (*ports.UpcomingItems, error) {
	fields := make(map[string]string)
	if days < 1 {
		fields["days"] = "must be >= 1"
	}
	if limit < 1 {
		fields["limit"] = "must be >= 1"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	now := s.clock.Now()
	// The filter's Before bounds are exclusive; the window's upper endpoint
	// is inclusive, so the cutoff sits one nanosecond past it.
	cutoff := now.AddDate(0, 0, days).Add(time.Nanosecond)

	items := &ports.UpcomingItems{}
	err := s.tx.WithReadTx(ctx, func(ctx context.Context) error {
		tasks, _, err := s.tasks.List(ctx, task.Filter{DueAfter: &now, DueBefore: &cutoff}, 0, limit)
		if err != nil {
			return err
		}
		events, _, err := s.events.List(ctx, event.Filter{StartAfter: &now, StartBefore: &cutoff}, 0, limit)
		if err != nil {
			return err
		}
		items.Tasks = tasks
		items.Events = events
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch upcoming items",
			slog.String("operation", "Upcoming"),
			slog.Int("days", days),
			slog.Any("error", err),
		)
		return nil, err
	}

	return items, nil
}

// Calendar returns the dense grid for one month: one entry per calendar day,
// each with the tasks due that day and the events intersecting that day.
// Days without items still appear with empty slices.
func (s *DashboardService) Calendar(ctx context.Context, year int, month time.Month) (*ports.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"month": fmt.Sprintf("must be 1-12, got %d", month),
		}}
	}
	if year < 1 || year > 9999 {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"year": fmt.Sprintf("must be 1-9999, got %d", year),
		}}
	}

	span := timespan.Month(year, month)

	var monthTasks []task.Task
	var monthEvents []event.Event
	err := s.tx.WithReadTx(ctx, func(ctx context.Context) error {
		var err error
		monthTasks, _, err = s.tasks.List(ctx, task.Filter{DueAfter: &span.Start, DueBefore: &span.End}, 0, 0)
		if err != nil {
			return err
		}
		monthEvents, err = s.events.FindOverlapping(ctx, span, 0)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build calendar view",
			slog.String("operation", "Calendar"),
			slog.Int("year", year),
			slog.Int("month", int(month)),
			slog.Any("error", err),
		)
		return nil, err
	}

	days := timespan.DaysIn(year, month)
	grid := &ports.CalendarMonth{
		Year:  year,
		Month: month,
		Days:  make([]ports.CalendarDay, days),
	}
	for i := range grid.Days {
		date := time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
		daySpan := timespan.Day(date)

		cell := ports.CalendarDay{
			Date:   date,
			Tasks:  []task.Task{},
			Events: []event.Event{},
		}
		for _, t := range monthTasks {
			if t.DueDate != nil && daySpan.Contains(*t.DueDate) {
				cell.Tasks = append(cell.Tasks, t)
			}
		}
		for _, e := range monthEvents {
			if daySpan.Overlaps(e.Span()) {
				cell.Events = append(cell.Events, e)
			}
		}
		grid.Days[i] = cell
	}

	return grid, nil
}

// Range returns tasks with a due date in [start, end) and events whose
// interval intersects [start, end).
func (s *DashboardService) Range(ctx context.Context, start, end time.Time) (*ports.RangeItems, error) {
	if !end.After(start) {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"end_date": "must be after start_date",
		}}
	}

	items := &ports.RangeItems{Start: start, End: end}
	err := s.tx.WithReadTx(ctx, func(ctx context.Context) error {
		tasks, _, err := s.tasks.List(ctx, task.Filter{DueAfter: &start, DueBefore: &end}, 0, 0)
		if err != nil {
			return err
		}
		events, err := s.events.FindOverlapping(ctx, timespan.New(start, end), 0)
		if err != nil {
			return err
		}
		items.Tasks = tasks
		items.Events = events
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch date range",
			slog.String("operation", "Range"),
			slog.Time("start", start),
			slog.Time("end", end),
			slog.Any("error", err),
		)
		return nil, err
	}

	return items, nil
}
