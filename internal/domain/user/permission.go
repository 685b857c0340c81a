package user

import "slices"

type Permission string

const (
	// Leave requests
	PermissionLeaveViewOwn   Permission = "leave.view_own"
	PermissionLeaveCreate    Permission = "leave.create"
	PermissionLeaveCancelOwn Permission = "leave.cancel_own"
	PermissionLeaveViewAll   Permission = "leave.view_all"
	PermissionLeaveApprove   Permission = "leave.approve"
	PermissionLeaveCancelAny Permission = "leave.cancel_any"

	// Approved leave administration
	PermissionLeaveGrant         Permission = "leave.grant"
	PermissionLeaveDeleteGranted Permission = "leave.delete_granted"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveCancelOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveCancelAny,
		PermissionLeaveGrant,
		PermissionLeaveDeleteGranted,
	},
	RoleHR: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveCancelOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveCancelAny,
		PermissionLeaveGrant,
		PermissionLeaveDeleteGranted,
	},
	RoleEmployee: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveCancelOwn,
	},
}

// HasPermission reports whether role grants permission. Unknown roles grant nothing.
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}
