package leave

import (
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

func authorize(actor user.Actor, permission user.Permission) error {
	if !actor.Role.Valid() {
		return leave.ErrUnknownActor
	}
	if !user.HasPermission(actor.Role, permission) {
		return leave.ErrApproverRequired
	}
	return nil
}

// authorizeEmployee allows staff on every employee and employees on themselves only.
func authorizeEmployee(actor user.Actor, employeeID string) error {
	switch actor.Role {
	case user.RoleHR, user.RoleAdmin:
		return nil
	case user.RoleEmployee:
		if actor.Owns(employeeID) {
			return nil
		}
		return leave.ErrUnauthorizedAccess
	default:
		return leave.ErrUnknownActor
	}
}

// scopeEmployee resolves the employee filter a listing runs with. Employees
// are pinned to themselves and asking for someone else is denied, not emptied.
func scopeEmployee(actor user.Actor, requested *string) (*string, error) {
	if !actor.Role.Valid() {
		return nil, leave.ErrUnknownActor
	}
	if requested != nil {
		if err := checkEmployeeID(*requested); err != nil {
			return nil, err
		}
	}
	if user.HasPermission(actor.Role, user.PermissionLeaveViewAll) {
		return requested, nil
	}
	if actor.EmployeeID == "" {
		return nil, leave.ErrUnauthorizedAccess
	}
	if requested != nil && *requested != actor.EmployeeID {
		return nil, leave.ErrUnauthorizedAccess
	}
	own := actor.EmployeeID
	return &own, nil
}
