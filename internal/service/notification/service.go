package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// EventName is the SSE event name inbox entries are pushed under.
const EventName = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 2 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

// Publisher pushes persisted notifications to live subscribers.
type Publisher interface {
	Publish(topic string, name string, data interface{}) int
}

type service struct {
	repo      notification.Repository
	publisher Publisher
	config    Config
	now       func() time.Time

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, publisher Publisher, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		now:       time.Now,
		queue:     make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:         uuid.Must(uuid.NewV7()).String(),
		EmployeeID: req.EmployeeID,
		SenderID:   req.SenderID,
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		Data:       req.Data,
		IsRead:     false,
		CreatedAt:  s.now().UTC(),
	}
}

func (s *service) push(notifications ...*notification.Notification) {
	for _, n := range notifications {
		s.publisher.Publish(sse.EmployeeTopic(n.EmployeeID), EventName, notification.NewNotificationResponse(n))
	}
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("Failed to batch insert notifications", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("Inserted notifications", "worker", id, "count", len(notifications))
			s.push(notifications...)
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, try direct insert
		return s.directInsert(ctx, req)
	}
}

// directInsert inserts a notification directly when queue is full
func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := s.newNotification(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.push(n)
	return nil
}

func employeeOf(actor user.Actor) (string, error) {
	if actor.EmployeeID == "" {
		return "", notification.ErrNoEmployeeRecord
	}
	return actor.EmployeeID, nil
}

// GetNotifications retrieves paginated notifications for the caller
func (s *service) GetNotifications(ctx context.Context, actor user.Actor, page, pageSize int, unreadOnly bool) (notification.NotificationListResponse, error) {
	employeeID, err := employeeOf(actor)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByEmployee(ctx, employeeID, page, pageSize, unreadOnly)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, employeeID)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.NewNotificationResponse(n)
	}

	return notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, actor user.Actor) (int, error) {
	employeeID, err := employeeOf(actor)
	if err != nil {
		return 0, err
	}
	return s.repo.GetUnreadCount(ctx, employeeID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, actor user.Actor, req notification.MarkAsReadRequest) error {
	employeeID, err := employeeOf(actor)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, employeeID)
}

// MarkAllAsRead marks all notifications as read for the caller
func (s *service) MarkAllAsRead(ctx context.Context, actor user.Actor) error {
	employeeID, err := employeeOf(actor)
	if err != nil {
		return err
	}
	return s.repo.MarkAllAsRead(ctx, employeeID)
}

// Delete removes a notification
func (s *service) Delete(ctx context.Context, actor user.Actor, notificationID string) error {
	employeeID, err := employeeOf(actor)
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(notificationID) {
		return notification.ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, notificationID, employeeID)
}

// PurgeRead deletes read notifications older than retention
func (s *service) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().UTC().Add(-retention))
}

// Stop flushes queued notifications and stops the workers. Safe to call more than once.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
