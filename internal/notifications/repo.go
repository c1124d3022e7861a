package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, supplierID uuid.UUID, now time.Time) (int64, error)
	CountUnread(ctx context.Context, supplierID uuid.UUID) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	SupplierID uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// forSupplier scopes a notification query to one supplier's feed. Every
// read path goes through it so a supplier can never see another's rows.
func (r *repositoryImpl) forSupplier(ctx context.Context, supplierID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("supplier_id = ?", supplierID)
}

func unread(query *gorm.DB) *gorm.DB {
	return query.Where("read_at IS NULL")
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	query := r.forSupplier(ctx, params.SupplierID)
	if params.UnreadOnly {
		query = unread(query)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, err
	}

	normalized := pagination.NormalizeLimit(params.Limit)
	if len(notifications) <= normalized {
		return notifications, nil, nil
	}
	next := notifications[normalized]
	return notifications[:normalized], &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	result := unread(r.forSupplier(ctx, supplierID)).
		Where("id = ?", notificationID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}
	if result.RowsAffected > 0 {
		return notificationMarkResult{Updated: true, Found: true}, nil
	}

	// Zero rows means either an already-read notification or one that does
	// not exist for this supplier. Distinguish so the caller can 404.
	var count int64
	if err := r.forSupplier(ctx, supplierID).Where("id = ?", notificationID).Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	return notificationMarkResult{Found: count > 0}, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, supplierID uuid.UUID, now time.Time) (int64, error) {
	result := unread(r.forSupplier(ctx, supplierID)).UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := unread(r.forSupplier(ctx, supplierID)).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
