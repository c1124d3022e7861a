package packages

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/types"
)

// PackageDTO exposes package data in API responses.
type PackageDTO struct {
	ID             uuid.UUID                   `json:"id"`
	SupplierID     uuid.UUID                   `json:"supplierId"`
	Name           string                      `json:"name"`
	Description    *string                     `json:"description,omitempty"`
	Category       enums.SupplierCategory      `json:"category"`
	Price          decimal.Decimal             `json:"price"`
	Currency       enums.Currency              `json:"currency"`
	DurationHours  *int                        `json:"durationHours,omitempty"`
	Includes       []string                    `json:"includes,omitempty"`
	Customizations types.PackageCustomizations `json:"customizations,omitempty"`
	Photos         []string                    `json:"photos,omitempty"`
	IsActive       bool                        `json:"isActive"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// CreatePackageInput holds creation-time data for a new package. The category
// is not accepted from the caller; it is copied from the owning supplier.
type CreatePackageInput struct {
	Name           string
	Description    *string
	Price          decimal.Decimal
	Currency       *enums.Currency
	DurationHours  *int
	Includes       []string
	Customizations types.PackageCustomizations
	Photos         []string
}

// UpdatePackageInput captures the package fields open to mutation.
type UpdatePackageInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	DurationHours  *int
	Includes       *[]string
	Customizations *types.PackageCustomizations
	Photos         *[]string
	IsActive       *bool
}

// FromModel maps the persisted package into a DTO.
func FromModel(m *models.Package) *PackageDTO {
	if m == nil {
		return nil
	}
	return &PackageDTO{
		ID:             m.ID,
		SupplierID:     m.SupplierID,
		Name:           m.Name,
		Description:    m.Description,
		Category:       m.Category,
		Price:          m.Price,
		Currency:       m.Currency,
		DurationHours:  m.DurationHours,
		Includes:       m.Includes,
		Customizations: m.Customizations,
		Photos:         m.Photos,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
