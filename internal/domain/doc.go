// Package domain holds shared domain primitives: sentinel errors, typed error
// values, and validation message constants used by the entity subpackages.
//
// Entity logic lives in the subpackages task, event, timespan, and page. The
// root package carries only what every subpackage needs, so that task and
// event do not depend on each other.
package domain

// Validation message constants shared by entity subpackages and request DTOs.
const (
	MsgRequired     = "is required"
	MsgMustNotEmpty = "must not be empty"
)
