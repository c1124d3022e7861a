package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// Supplier is a vendor account offering wedding-service packages.
// Category is locked once set; every package under the supplier must match it.
type Supplier struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessName      string                 `gorm:"column:business_name;type:text;not null"`
	Category          enums.SupplierCategory `gorm:"column:category;type:supplier_category;not null"`
	AccountStatus     enums.AccountStatus    `gorm:"column:account_status;type:account_status;not null;default:'pending_review'"`
	AcceptingBookings bool                   `gorm:"column:accepting_bookings;not null;default:true"`
	VerifiedAt        *time.Time             `gorm:"column:verified_at"`
	Description       *string                `gorm:"column:description;type:text"`
	Phone             *string                `gorm:"column:phone;type:text"`
	City              *string                `gorm:"column:city;type:text"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// IsEligibleForBookings reports whether the supplier may receive new bookings:
// the account must be active and have passed verification.
func (s Supplier) IsEligibleForBookings() bool {
	return s.AccountStatus == enums.AccountStatusActive && s.VerifiedAt != nil
}
