package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
)

// ValidateRange checks that [start, end] is a valid span for employeeID and
// that it does not intersect any of the employee's approved leave.
func ValidateRange(employeeID string, start, end time.Time, existing []leave.ApprovedLeave) error {
	start, end = leave.NormalizeDate(start), leave.NormalizeDate(end)
	if end.Before(start) {
		return leave.Invalid(validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must be on or after start_date",
		}})
	}

	for _, approved := range existing {
		if approved.EmployeeID != employeeID {
			continue
		}
		if leave.Overlaps(start, end, approved.StartDate, approved.EndDate) {
			return fmt.Errorf("%w: %w", leave.ErrOverlappingLeave, validator.ValidationErrors{{
				Field: "start_date",
				Message: fmt.Sprintf("overlaps approved leave %s (%s to %s)",
					approved.ID,
					approved.StartDate.Format(leave.DateLayout),
					approved.EndDate.Format(leave.DateLayout),
				),
			}})
		}
	}

	return nil
}

// checkID rejects identifiers that cannot exist in the stores. A malformed id
// is reported as notFound instead of reaching the database.
func checkID(id string, notFound error) error {
	if !validator.IsValidUUID(id) {
		return notFound
	}
	return nil
}

// checkEmployeeID reports a malformed employee id as a field validation error.
func checkEmployeeID(employeeID string) error {
	if !validator.IsValidUUID(employeeID) {
		return leave.Invalid(validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		}})
	}
	return nil
}
