// Package timespan provides the half-open time interval value type shared by
// event scheduling and range queries. A Span covers [Start, End): the start
// instant is included, the end instant is not, so back-to-back spans that
// touch at an endpoint do not overlap.
package timespan

import "time"

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// New returns the span [start, end).
func New(start, end time.Time) Span {
	return Span{Start: start, End: end}
}

// Valid reports whether the span is well-formed, i.e. End is strictly after
// Start. A zero-duration span is not valid.
func (s Span) Valid() bool {
	return s.End.After(s.Start)
}

// Overlaps reports whether s and other intersect. Touching endpoints
// (s.End == other.Start) do not count as overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Contains reports whether instant t falls inside the span.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Duration returns End - Start.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Month returns the span covering the given calendar month in UTC:
// [first of month 00:00, first of next month 00:00).
func Month(year int, month time.Month) Span {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Span{Start: start, End: start.AddDate(0, 1, 0)}
}

// Day returns the span covering the calendar day containing t, in t's
// location: [midnight, next midnight).
func Day(t time.Time) Span {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return Span{Start: start, End: start.AddDate(0, 0, 1)}
}

// DaysIn returns the number of days in the given calendar month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
