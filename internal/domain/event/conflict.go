package event

import (
	"fmt"

	"github.com/jlundqvist/agenda/internal/domain"
)

// ConflictError reports that a candidate interval overlaps one or more stored
// events. Conflicts carries the overlapping events so the transport layer can
// include them in the error payload. Wraps domain.ErrConflict.
type ConflictError struct {
	Conflicts []Event
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("%s with event %d (%q)", domain.ErrConflict.Error(), c.ID, c.Title)
	}
	return fmt.Sprintf("%s with %d events", domain.ErrConflict.Error(), len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return domain.ErrConflict
}
