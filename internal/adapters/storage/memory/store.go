// Package memory provides an in-memory storage adapter implementing the
// repository ports. It backs the `memory` storage driver and the service
// tests.
//
// Concurrency discipline: one store-wide mutex. WithTx holds the mutex for
// the whole callback and snapshots both tables first, restoring them if the
// callback fails, so transactions are fully serialized and all-or-nothing.
// That trivially satisfies the event-conflict contract: no other mutation can
// interleave between an overlap scan and its write.
package memory

import (
	"context"
	"sync"

	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
)

// txMarker marks a context as running inside WithTx so that nested repository
// calls do not try to re-acquire the store mutex.
type txMarker struct{}

// Store is the shared in-memory state behind both repositories.
type Store struct {
	mu       sync.Mutex
	tasks    map[int64]task.Task
	events   map[int64]event.Event
	nextTask int64
	nextEv   int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tasks:    make(map[int64]task.Task),
		events:   make(map[int64]event.Event),
		nextTask: 1,
		nextEv:   1,
	}
}

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{store: s}
}

// Events returns the event repository view of the store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

// WithTx runs fn while holding the store mutex. On error the tables are
// restored from a snapshot taken at entry, so no partial writes survive.
// Not re-entrant: fn must not call WithTx again.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapTasks := make(map[int64]task.Task, len(s.tasks))
	for id, t := range s.tasks {
		snapTasks[id] = t
	}
	snapEvents := make(map[int64]event.Event, len(s.events))
	for id, e := range s.events {
		snapEvents[id] = e
	}
	snapNextTask, snapNextEv := s.nextTask, s.nextEv

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.tasks = snapTasks
		s.events = snapEvents
		s.nextTask, s.nextEv = snapNextTask, snapNextEv
		return err
	}
	return nil
}

// WithReadTx runs fn while holding the store mutex, so every read inside the
// callback sees the same state. Same re-entrancy rule as WithTx.
func (s *Store) WithReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.WithTx(ctx, fn)
}

// lock acquires the store mutex unless ctx already runs inside WithTx.
// The returned func releases whatever was acquired.
func (s *Store) lock(ctx context.Context) func() {
	if inTx, _ := ctx.Value(txMarker{}).(bool); inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// HealthCheck implements ports.HealthChecker. An in-process map is always
// healthy.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}
