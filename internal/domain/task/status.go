package task

import (
	"fmt"

	"github.com/jlundqvist/agenda/internal/domain"
)

// Status represents the completion state of a Task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// TransitionError is the idempotency guard error: a status transition was
// requested but the task is already in the target state. Current holds the
// state the task was (and remains) in. Callers branch on it via errors.As;
// errors.Is(err, domain.ErrTransition) also matches.
type TransitionError struct {
	TaskID  int64
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %d is already %s", e.TaskID, e.Current)
}

func (e *TransitionError) Unwrap() error {
	return domain.ErrTransition
}
