package notification

import (
	"context"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// Inbox of the calling employee
	GetNotifications(ctx context.Context, actor user.Actor, page, pageSize int, unreadOnly bool) (NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, actor user.Actor) (int, error)
	MarkAsRead(ctx context.Context, actor user.Actor, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, actor user.Actor) error
	Delete(ctx context.Context, actor user.Actor, notificationID string) error

	// Maintenance
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)

	// Lifecycle
	Stop()
}
