package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface. Inbox reads and
// writes are scoped to the recipient employee.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByEmployee(ctx context.Context, employeeID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, employeeID string) (int, error)
	MarkAsRead(ctx context.Context, ids []string, employeeID string) error
	MarkAllAsRead(ctx context.Context, employeeID string) error
	Delete(ctx context.Context, id string, employeeID string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
