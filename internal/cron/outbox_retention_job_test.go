package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/velora-market/velora-backend/pkg/logger"
)

type fakeOutboxRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
}

func (f *fakeOutboxRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

func TestOutboxRetentionDeletesPublishedRows(t *testing.T) {
	now := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRepo{deletedRows: 7}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
}

func TestOutboxRetentionPropagatesErrors(t *testing.T) {
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: &fakeOutboxRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
