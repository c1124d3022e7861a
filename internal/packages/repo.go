package packages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
)

// Repository handles package persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to package operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists a new package row inside the transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, pkg *models.Package) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(pkg).Error
}

// FindByID loads a package by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

// FindByIDWithTx loads a package using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Package, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var pkg models.Package
	if err := tx.First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ListBySupplier returns the supplier's packages, newest first. Inactive
// packages are included only when includeInactive is set.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, includeInactive bool) ([]models.Package, error) {
	query := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Package
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateWithTx persists the package using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, pkg *models.Package) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if pkg == nil {
		return fmt.Errorf("package is required")
	}
	return tx.Save(pkg).Error
}
