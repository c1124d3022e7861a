package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/velora-market/velora-backend/pkg/logger"
)

// Published outbox rows are kept for a month so operators can trace a
// delivery dispute before the row disappears.
const outboxRetentionDays = 30

type outboxRetentionRepo interface {
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

// OutboxRetentionJobParams configure the published-event cleanup.
type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	Retention  int
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	retention time.Duration
	now       func() time.Time
}

// NewOutboxRetentionJob constructs the outbox retention job.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.Repository == nil:
		return nil, fmt.Errorf("outbox repository required")
	}

	days := params.Retention
	if days <= 0 {
		days = outboxRetentionDays
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeletePublishedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "outbox retention cleanup complete")
	return nil
}
