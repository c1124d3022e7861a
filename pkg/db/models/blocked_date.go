package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// BlockedDate marks a supplier as unavailable on a calendar day. Manual
// entries (blocked/unavailable) are supplier-created and deletable;
// reserved/requested entries are derived from bookings and carry the booking
// back-reference.
type BlockedDate struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID             `gorm:"column:supplier_id;type:uuid;not null;index"`
	Date       time.Time             `gorm:"column:date;type:date;not null"`
	Type       enums.BlockedDateType `gorm:"column:type;type:blocked_date_type;not null"`
	Reason     *string               `gorm:"column:reason;type:text"`
	BookingID  *uuid.UUID            `gorm:"column:booking_id;type:uuid;index"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
