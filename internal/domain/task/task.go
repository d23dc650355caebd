// Package task holds the task entity, its status state machine, and the
// filter/patch types used for listing and partial updates.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
)

// Task is a deadline-oriented record with a binary status. The due date is
// optional; nil means the task has no deadline and never counts as overdue.
// CreatedAt and UpdatedAt are set by the service layer, never client-supplied.
type Task struct {
	ID          int64
	Title       string
	Description string
	DueDate     *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business rules for the Task entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (t *Task) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = domain.MsgRequired
	}
	if !t.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", t.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Complete transitions the task pending -> completed.
// Returns a *TransitionError if the task is already completed.
func (t *Task) Complete() error {
	if t.Status == StatusCompleted {
		return &TransitionError{TaskID: t.ID, Current: StatusCompleted}
	}
	t.Status = StatusCompleted
	return nil
}

// Reopen transitions the task completed -> pending.
// Returns a *TransitionError if the task is already pending.
func (t *Task) Reopen() error {
	if t.Status == StatusPending {
		return &TransitionError{TaskID: t.ID, Current: StatusPending}
	}
	t.Status = StatusPending
	return nil
}

// Overdue reports whether the task is pending with a due date before now.
// Tasks without a due date are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate != nil && t.DueDate.Before(now)
}
