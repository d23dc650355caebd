package event

import "time"

// Patch carries a partial update for an Event. Nil fields mean "do not
// change". Interval ordering and overlap are checked by the service against
// the candidate post-patch interval, not here.
type Patch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// IsZero reports whether the patch changes nothing.
func (p *Patch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.StartTime == nil && p.EndTime == nil
}

// Apply merges the patch into e.
func (p *Patch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
}
