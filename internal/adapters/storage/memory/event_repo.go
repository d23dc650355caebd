package memory

import (
	"context"
	"sort"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Compile-time check that EventRepository implements ports.EventRepository.
var _ ports.EventRepository = (*EventRepository)(nil)

// EventRepository is the event view over the shared in-memory store.
type EventRepository struct {
	store *Store
}

// WithTx delegates to the shared store transaction.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTx(ctx, fn)
}

// WithReadTx delegates to the shared store read snapshot.
func (r *EventRepository) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithReadTx(ctx, fn)
}

// Insert stores a new event and assigns the next ID.
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) (*event.Event, error) {
	defer r.store.lock(ctx)()

	stored := *e
	stored.ID = r.store.nextEv
	r.store.nextEv++
	r.store.events[stored.ID] = stored

	out := stored
	return &out, nil
}

// FindByID returns a copy of the stored event.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*event.Event, error) {
	defer r.store.lock(ctx)()

	e, ok := r.store.events[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindEvent, ID: id}
	}
	out := e
	return &out, nil
}

// Update replaces the stored event.
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.events[e.ID]; !ok {
		return &domain.NotFoundError{Kind: domain.KindEvent, ID: e.ID}
	}
	r.store.events[e.ID] = *e
	return nil
}

// Delete removes the stored event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.events[id]; !ok {
		return &domain.NotFoundError{Kind: domain.KindEvent, ID: id}
	}
	delete(r.store.events, id)
	return nil
}

// List evaluates the filter in memory and pages the sorted matches.
func (r *EventRepository) List(ctx context.Context, f event.Filter, offset, limit int) ([]event.Event, int64, error) {
	defer r.store.lock(ctx)()

	matches := r.matches(f)
	total := int64(len(matches))
	return pageSlice(matches, offset, limit), total, nil
}

// Count returns the number of events matching the filter.
func (r *EventRepository) Count(ctx context.Context, f event.Filter) (int64, error) {
	defer r.store.lock(ctx)()

	return int64(len(r.matches(f))), nil
}

// FindOverlapping scans all events for interval overlap with span, excluding
// excludeID (0 excludes nothing). Results are ordered by start time.
func (r *EventRepository) FindOverlapping(ctx context.Context, span timespan.Span, excludeID int64) ([]event.Event, error) {
	defer r.store.lock(ctx)()

	out := []event.Event{}
	for _, e := range r.store.events {
		if e.ID == excludeID {
			continue
		}
		if span.Overlaps(e.Span()) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

// matches returns filtered events ordered by start time then ID.
// Caller must hold the store mutex.
func (r *EventRepository) matches(f event.Filter) []event.Event {
	out := make([]event.Event, 0, len(r.store.events))
	for _, e := range r.store.events {
		if f.Matches(&e) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

func sortEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
