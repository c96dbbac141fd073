package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("booking: not found")
	// ErrInvalidStatus is returned when a status value is outside the
	// recognized set.
	ErrInvalidStatus = errors.New("booking: invalid status")
	// ErrAlreadyExists is returned when a unique value collides with an
	// existing record.
	ErrAlreadyExists = errors.New("booking: already exists")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports that a candidate time range collides with existing
// bookings. The scheduler never raises it on its own; callers build it from a
// non-empty FindConflicts result before deciding whether to proceed.
type ConflictError struct {
	Conflicts []Appointment
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("booking conflicts with %d existing appointment(s)", len(c.Conflicts))
}
