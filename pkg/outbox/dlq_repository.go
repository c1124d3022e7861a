package outbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
)

const (
	// maxDLQErrorLen caps the stored driver error so a pathological payload
	// cannot bloat the dead letter table.
	maxDLQErrorLen = 1024

	defaultDLQListLimit = 50
)

// DLQRepository persists outbox events that exhausted their publish attempts
// or hit a non-retryable failure. Rows stay until an operator replays or
// discards them.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// InsertTx writes the dead letter row inside the caller's transaction, the
// same one that deletes the source outbox event. An event is therefore always
// in exactly one of the two tables.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil && len(*entry.ErrorMessage) > maxDLQErrorLen {
		truncated := (*entry.ErrorMessage)[:maxDLQErrorLen]
		entry.ErrorMessage = &truncated
	}
	return tx.Create(&entry).Error
}

// FindByEventID returns the parked row for an event, or nil when the event
// never dead-lettered.
func (r *DLQRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var row models.OutboxDLQ
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &row, nil
}

// List returns the most recently parked events, newest first.
func (r *DLQRepository) List(ctx context.Context, limit int) ([]models.OutboxDLQ, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = defaultDLQListLimit
	}
	var rows []models.OutboxDLQ
	err := r.db.WithContext(ctx).
		Order("failed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
