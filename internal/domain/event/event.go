// Package event holds the event entity and its interval semantics. An event
// occupies a half-open time interval [StartTime, EndTime); no two stored
// events may have overlapping intervals. The conflict check itself lives in
// the application layer, where it runs inside a storage transaction.
package event

import (
	"strings"
	"time"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/timespan"
)

// Event is a time-interval-oriented record. CreatedAt and UpdatedAt are set
// by the service layer, never client-supplied.
type Event struct {
	ID          int64
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Span returns the event's interval as a timespan.Span.
func (e *Event) Span() timespan.Span {
	return timespan.New(e.StartTime, e.EndTime)
}

// Validate checks business rules for the Event entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (e *Event) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(e.Title) == "" {
		fields["title"] = domain.MsgRequired
	}
	if !e.Span().Valid() {
		fields["end_time"] = "must be after start_time"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
