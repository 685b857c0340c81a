package cron

import (
	"context"
	"log/slog"
	"time"
)

// Purger removes read notifications older than a retention window.
type Purger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationJobs contains inbox maintenance jobs
type NotificationJobs struct {
	purger    Purger
	retention time.Duration
}

func NewNotificationJobs(purger Purger, retention time.Duration) *NotificationJobs {
	return &NotificationJobs{purger: purger, retention: retention}
}

// RegisterJobs registers all notification-related cron jobs
func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_read_notifications", 6*time.Hour, j.PurgeReadNotifications)
}

// PurgeReadNotifications deletes read notifications past the retention window
func (j *NotificationJobs) PurgeReadNotifications(ctx context.Context) error {
	removed, err := j.purger.PurgeRead(ctx, j.retention)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Purged read notifications", "count", removed, "retention", j.retention)
	}
	return nil
}
