package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/task"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
)

// CreateTaskRequest represents the JSON body for creating a new task.
// DueDate is optional RFC 3339; Status defaults to pending when omitted.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// Validate checks that required fields are present and optional fields have
// valid values. Returns a *domain.ValidationError if any checks fail.
func (r *CreateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = msgRequired
	}
	if r.Status != "" && !task.Status(r.Status).IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", r.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateTaskRequest represents the JSON body for updating an existing task.
// All fields are optional; nil means "do not change this field". Setting
// clear_due_date removes the due date regardless of due_date.
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = msgMustNotEmpty
	}
	if r.Status != nil && !task.Status(*r.Status).IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", *r.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// BulkUpdateItem pairs a task ID with its patch within a bulk update request.
type BulkUpdateItem struct {
	ID int64 `json:"id"`
	UpdateTaskRequest
}

// BulkUpdateTasksRequest represents the JSON body for updating several tasks
// in one call.
type BulkUpdateTasksRequest struct {
	Updates []BulkUpdateItem `json:"updates"`
}

// Validate checks that the request names at least one task and that every
// item carries a valid ID and patch.
func (r *BulkUpdateTasksRequest) Validate() error {
	if len(r.Updates) == 0 {
		return &domain.ValidationError{Fields: map[string]string{
			"updates": msgRequired,
		}}
	}

	fields := make(map[string]string)
	for i, item := range r.Updates {
		if item.ID <= 0 {
			fields[fmt.Sprintf("updates[%d].id", i)] = "must be a positive integer"
		}
		var verr *domain.ValidationError
		if err := item.Validate(); errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				fields[fmt.Sprintf("updates[%d].%s", i, field)] = msg
			}
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// CreateEventRequest represents the JSON body for creating a new event.
// Times are RFC 3339; the interval is half-open [start_time, end_time).
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Validate checks that required fields are present.
// Returns a *domain.ValidationError if any checks fail. Interval ordering is
// enforced by the domain entity.
func (r *CreateEventRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = msgRequired
	}
	if r.StartTime.IsZero() {
		fields["start_time"] = msgRequired
	}
	if r.EndTime.IsZero() {
		fields["end_time"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateEventRequest represents the JSON body for updating an existing event.
// All fields are optional; nil means "do not change this field".
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateEventRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = msgMustNotEmpty
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
