package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/velora-market/velora-backend/pkg/logger"
)

// Read notifications age out after a quarter. The feed query never looks
// back that far, so this only trims dead weight from the table.
const notificationRetentionDays = 90

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the notification retention job.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsCleanupRepo
	Retention  int
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationsCleanupRepo
	retention time.Duration
	now       func() time.Time
}

// NewNotificationCleanupJob constructs the notification cleanup job.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.Repository == nil:
		return nil, fmt.Errorf("notifications repository required")
	}

	days := params.Retention
	if days <= 0 {
		days = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "notification cleanup complete")
	return nil
}
