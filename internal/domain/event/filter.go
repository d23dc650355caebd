package event

import (
	"strings"
	"time"

	"github.com/jlundqvist/agenda/internal/domain/timespan"
)

// Filter holds optional filter criteria for listing events.
// Zero-value fields mean "no filter" for that dimension.
//
// StartAfter/EndAfter are inclusive (>=), StartBefore/EndBefore exclusive (<).
// Year+Month select events whose interval intersects that calendar month;
// Day selects events intersecting that calendar day. Search is a
// case-insensitive substring match over title and description.
type Filter struct {
	StartAfter  *time.Time
	StartBefore *time.Time
	EndAfter    *time.Time
	EndBefore   *time.Time
	Search      string
	Year        int
	Month       time.Month
	Day         *time.Time
}

// Window returns the calendar window implied by Year/Month/Day, if any.
// Day takes precedence over Year+Month when both are set.
func (f Filter) Window() (timespan.Span, bool) {
	if f.Day != nil {
		return timespan.Day(*f.Day), true
	}
	if f.Year != 0 && f.Month != 0 {
		return timespan.Month(f.Year, f.Month), true
	}
	return timespan.Span{}, false
}

// Matches reports whether e satisfies every set predicate. SQL-backed
// adapters translate the filter to queries; the in-memory adapter evaluates
// Matches directly.
func (f Filter) Matches(e *Event) bool {
	if f.StartAfter != nil && e.StartTime.Before(*f.StartAfter) {
		return false
	}
	if f.StartBefore != nil && !e.StartTime.Before(*f.StartBefore) {
		return false
	}
	if f.EndAfter != nil && e.EndTime.Before(*f.EndAfter) {
		return false
	}
	if f.EndBefore != nil && !e.EndTime.Before(*f.EndBefore) {
		return false
	}
	if window, ok := f.Window(); ok && !window.Overlaps(e.Span()) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			return false
		}
	}
	return true
}
