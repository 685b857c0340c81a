package user

import "fmt"

type Role string

const (
	RoleEmployee Role = "employee" // Files and follows their own leave
	RoleHR       Role = "hr"       // Decides leave for every employee
	RoleAdmin    Role = "admin"    // HR rights plus direct leave administration
)

// ParseRole accepts only the canonical lowercase spellings.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the authenticated identity performing an operation. It is passed
// explicitly to every service call.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// IsStaff reports whether the actor acts on behalf of the organisation (HR or Admin).
func (a Actor) IsStaff() bool {
	switch a.Role {
	case RoleHR, RoleAdmin:
		return true
	case RoleEmployee:
		return false
	default:
		return false
	}
}

// Owns reports whether the actor is the employee identified by employeeID.
func (a Actor) Owns(employeeID string) bool {
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}
