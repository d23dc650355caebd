// Package clock abstracts "now" as an injected capability so that overdue and
// upcoming computations are deterministic under test. Production code wires
// System; tests wire Fixed with a chosen instant.
package clock

import "time"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns time.Now in UTC. Storing and comparing in UTC keeps interval
// arithmetic independent of the server's local zone.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock frozen at a single instant.
type Fixed struct {
	Instant time.Time
}

// At returns a Fixed clock frozen at t.
func At(t time.Time) Fixed {
	return Fixed{Instant: t}
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}
