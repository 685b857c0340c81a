package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveApproved NotificationType = "leave_approved"
	TypeLeaveRejected NotificationType = "leave_rejected"
	TypeLeaveGranted  NotificationType = "leave_granted"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeLeaveGranted,
	}
}

func (t NotificationType) Valid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification is one inbox entry addressed to an employee.
type Notification struct {
	ID         string
	EmployeeID string
	SenderID   *string
	Type       NotificationType
	Title      string
	Message    string
	Data       map[string]interface{}
	IsRead     bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}
