package leave

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the leave service matches exactly one
// of them with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrPersistence = errors.New("persistence error")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrLeaveRequestNotFound  = newError(ErrNotFound, "Leave request not found")
	ErrApprovedLeaveNotFound = newError(ErrNotFound, "Approved leave not found")
	ErrEmployeeNotFound      = newError(ErrNotFound, "Employee not found")

	ErrLeaveRequestAlreadyProcessed = newError(ErrValidation, "Leave request already processed")
	ErrLeaveRequestNotPending       = newError(ErrValidation, "Only pending leave requests can be cancelled")
	ErrOverlappingLeave             = newError(ErrValidation, "Leave overlaps an approved leave")
	ErrInvalidTransition            = newError(ErrValidation, "Target status must be approved or rejected")
	ErrInvalidStatus                = newError(ErrValidation, "Status must be one of: pending, approved, rejected")

	ErrUnauthorizedAccess = newError(ErrForbidden, "Not allowed to access leave of another employee")
	ErrApproverRequired   = newError(ErrForbidden, "HR or admin role required")
	ErrUnknownActor       = newError(ErrForbidden, "Actor role is not recognised")
)

// Invalid marks err (usually validator.ValidationErrors) as a validation failure.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Persistence wraps a store failure. Errors that already carry a kind, such as
// a repository reporting ErrLeaveRequestNotFound, are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrPersistence} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
