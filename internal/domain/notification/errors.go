package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrNoEmployeeRecord        = errors.New("account has no employee record")
	ErrInvalidNotificationType = errors.New("invalid notification type")
)
