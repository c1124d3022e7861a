package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/types"
)

// Package is a supplier's offering. Its category always equals the owning
// supplier's locked category; the invariant is enforced at write time.
type Package struct {
	ID             uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID     uuid.UUID                   `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name           string                      `gorm:"column:name;type:text;not null"`
	Description    *string                     `gorm:"column:description;type:text"`
	Category       enums.SupplierCategory      `gorm:"column:category;type:supplier_category;not null"`
	Price          decimal.Decimal             `gorm:"column:price;type:numeric(12,2);not null"`
	Currency       enums.Currency              `gorm:"column:currency;type:text;not null;default:'USD'"`
	DurationHours  *int                        `gorm:"column:duration_hours"`
	Includes       types.StringList            `gorm:"column:includes;type:jsonb;serializer:json"`
	Customizations types.PackageCustomizations `gorm:"column:customizations;type:jsonb;serializer:json"`
	Photos         types.StringList            `gorm:"column:photos;type:jsonb;serializer:json"`
	IsActive       bool                        `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
