package task

import "time"

// Patch carries a partial update for a Task. Nil fields mean "do not change".
// Merge semantics per field:
//
//   - Title: replaced as-is (empty after trimming fails validation).
//   - Description: replaced as-is; an explicit empty string clears it.
//   - DueDate: replaced; setting ClearDueDate removes the deadline entirely,
//     which a nil DueDate alone cannot express.
//   - Status: routed through the same Complete/Reopen transition checks as the
//     dedicated operations, so idempotency guard errors are preserved.
type Patch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *Status
}

// IsZero reports whether the patch changes nothing.
func (p *Patch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.Status == nil
}

// Apply merges the patch into t. Status changes go through the entity's
// transition methods and may return a *TransitionError; all other fields are
// merged first so a failed transition leaves t untouched only if the caller
// works on a copy, which the service layer does.
func (p *Patch) Apply(t *Task) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Status != nil {
		switch *p.Status {
		case StatusCompleted:
			return t.Complete()
		case StatusPending:
			return t.Reopen()
		}
	}
	return nil
}
