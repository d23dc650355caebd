package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/page"
	"github.com/jlundqvist/agenda/internal/platform/clock"
	"github.com/jlundqvist/agenda/internal/platform/telemetry"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that EventService implements ports.EventService.
var _ ports.EventService = (*EventService)(nil)

// EventService implements ports.EventService and owns the no-overlap
// invariant. The overlap scan and the write always run inside one repository
// transaction: the repository's WithTx contract guarantees that no other
// event mutation can slip between the scan and the insert/update, so two
// concurrent creates for overlapping intervals cannot both succeed.
type EventService struct {
	events      ports.EventRepository
	clock       clock.Clock
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	maxPageSize int
}

// NewEventService creates an EventService. metrics may be nil when telemetry
// is disabled; the conflict counter is then skipped.
func NewEventService(events ports.EventRepository, clk clock.Clock, logger *slog.Logger, metrics *telemetry.Metrics, maxPageSize int) *EventService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventService{
		events:      events,
		clock:       clk,
		logger:      logger,
		metrics:     metrics,
		maxPageSize: maxPageSize,
	}
}

// Create validates and stores a new event, failing with a *event.ConflictError
// when the interval overlaps any stored event.
func (s *EventService) Create(ctx context.Context, e *event.Event) (*event.Event, error) {
	s.logger.InfoContext(ctx, "creating event",
		slog.String("title", e.Title),
		slog.Time("start", e.StartTime),
		slog.Time("end", e.EndTime),
	)

	if err := e.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	var created *event.Event
	err := s.events.WithTx(ctx, func(ctx context.Context) error {
		conflicts, err := s.events.FindOverlapping(ctx, e.Span(), 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &event.ConflictError{Conflicts: conflicts}
		}
		created, err = s.events.Insert(ctx, e)
		return err
	})
	if err != nil {
		s.recordFailure(ctx, "Create", 0, err)
		return nil, err
	}

	return created, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id int64) (*event.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch event",
			slog.String("operation", "Get"),
			slog.Int64("event_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return e, nil
}

// Update merges the patch and re-runs the ordering and conflict checks
// against the candidate post-update interval, excluding the event itself
// from the overlap scan. Read, check, and write share one transaction.
func (s *EventService) Update(ctx context.Context, id int64, p event.Patch) (*event.Event, error) {
	s.logger.InfoContext(ctx, "updating event", slog.Int64("event_id", id))

	var updated *event.Event
	err := s.events.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.events.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.Apply(e)
		if err := e.Validate(); err != nil {
			return err
		}
		conflicts, err := s.events.FindOverlapping(ctx, e.Span(), id)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &event.ConflictError{Conflicts: conflicts}
		}
		e.UpdatedAt = s.clock.Now()
		if err := s.events.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		s.recordFailure(ctx, "Update", id, err)
		return nil, err
	}

	return updated, nil
}

// Delete removes the event. No conflict implications.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting event", slog.Int64("event_id", id))

	if err := s.events.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete event",
			slog.String("operation", "Delete"),
			slog.Int64("event_id", id),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// List returns a page of events matching the filter.
func (s *EventService) List(ctx context.Context, f event.Filter, p page.Request) (page.Result[event.Event], error) {
	p = p.Normalize(s.maxPageSize)

	rows, total, err := s.events.List(ctx, f, p.Offset(), p.Size)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list events",
			slog.String("operation", "List"),
			slog.Any("error", err),
		)
		return page.Result[event.Event]{}, err
	}

	return page.NewResult(rows, total, p), nil
}

// recordFailure logs a failed mutation and counts rejected overlaps.
func (s *EventService) recordFailure(ctx context.Context, op string, id int64, err error) {
	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.Any("error", err),
	}
	if id != 0 {
		attrs = append(attrs, slog.Int64("event_id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, "event mutation failed", attrs...)

	var cerr *event.ConflictError
	if s.metrics != nil && errors.As(err, &cerr) {
		s.metrics.TimeConflictTotal.Add(ctx, 1)
	}
}
