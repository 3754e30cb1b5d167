package types

import (
	"errors"
	"fmt"
)

// Structural operation errors. The registry, lock, and router return these
// unwrapped so callers can match them with errors.Is; the lifecycle manager
// propagates them without adding retry logic of its own.
// See docs/ARCHITECTURE.md § Error Taxonomy.
var (
	// ErrDuplicateCourse is returned when a create or register names a course
	// id that already maps to a different database.
	ErrDuplicateCourse = errors.New("course already registered")

	// ErrUnknownCourse is returned when an operation references a course id
	// with no registry entry.
	ErrUnknownCourse = errors.New("unknown course")

	// ErrLockTimeout is returned when the structural lock could not be
	// acquired within the caller's deadline. No state has changed; the
	// caller may retry.
	ErrLockTimeout = errors.New("structural lock timeout")

	// ErrNestedContext is returned when code tries to enter a course context
	// while a different course is already active. This is a programming
	// error, not a retryable condition.
	ErrNestedContext = errors.New("nested course context")

	// ErrInvalidCourseID is returned when a course id fails validation.
	ErrInvalidCourseID = errors.New("invalid course id")
)

// PartialProvisioningError reports a create that failed after the physical
// database was made but before it could be cleaned up or registered. The
// orphaned file named by Path requires operator reconciliation; it is never
// removed automatically because it may hold data the operator wants.
type PartialProvisioningError struct {
	Course string
	Path   string
	Err    error
}

func (e *PartialProvisioningError) Error() string {
	return fmt.Sprintf("partial provisioning of course %q: orphan database at %s: %v",
		e.Course, e.Path, e.Err)
}

func (e *PartialProvisioningError) Unwrap() error { return e.Err }
