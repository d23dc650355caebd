package task

import (
	"strings"
	"time"
)

// Filter holds optional filter criteria for listing tasks.
// Zero-value fields mean "no filter" for that dimension.
//
// The due-date window is half-open: DueAfter is inclusive (>=), DueBefore is
// exclusive (<). Search is a case-insensitive substring match over title and
// description.
type Filter struct {
	Status    Status
	DueAfter  *time.Time
	DueBefore *time.Time
	Search    string
}

// Matches reports whether t satisfies every set predicate. Repository
// adapters that can translate the filter to queries do so; the in-memory
// adapter evaluates Matches directly.
func (f Filter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}
