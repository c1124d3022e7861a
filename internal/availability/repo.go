package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
)

// Repository handles blocked-date persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to availability operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new blocked-date row.
func (r *Repository) Create(ctx context.Context, entry *models.BlockedDate) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID loads a blocked-date entry by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BlockedDate, error) {
	var entry models.BlockedDate
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindBySupplierAndDate returns all entries for the supplier on the given day.
func (r *Repository) FindBySupplierAndDate(ctx context.Context, supplierID uuid.UUID, date time.Time) ([]models.BlockedDate, error) {
	var rows []models.BlockedDate
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND date = ?", supplierID, date.Format("2006-01-02")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListRange returns the supplier's entries within [from, to] ordered by date.
func (r *Repository) ListRange(ctx context.Context, supplierID uuid.UUID, from, to time.Time) ([]models.BlockedDate, error) {
	var rows []models.BlockedDate
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND date >= ? AND date <= ?",
			supplierID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a blocked-date entry by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BlockedDate{}).Error
}

// ListDerivedFrom returns booking-derived entries dated on or after from.
func (r *Repository) ListDerivedFrom(ctx context.Context, from time.Time) ([]models.BlockedDate, error) {
	var rows []models.BlockedDate
	if err := r.db.WithContext(ctx).
		Where("booking_id IS NOT NULL AND date >= ?", from.Format("2006-01-02")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateWithTx persists a blocked-date row inside the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, entry *models.BlockedDate) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(entry).Error
}

// DeleteWithTx removes a blocked-date row inside the provided transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("id = ?", id).Delete(&models.BlockedDate{}).Error
}
