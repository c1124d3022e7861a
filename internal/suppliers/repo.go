package suppliers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// Repository handles supplier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to supplier operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a supplier by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update saves the provided supplier.
func (r *Repository) Update(ctx context.Context, supplier *models.Supplier) error {
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return r.db.WithContext(ctx).Save(supplier).Error
}

// FindByIDWithTx loads a supplier using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Supplier, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var supplier models.Supplier
	if err := tx.First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ListActiveIDs returns the ids of suppliers whose account is active.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("account_status = ?", enums.AccountStatusActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateWithTx persists the supplier using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, supplier *models.Supplier) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return tx.Save(supplier).Error
}
