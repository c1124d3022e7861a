package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// BookingPayment is one recorded payment against a booking. The booking's
// paid_amount column equals the sum of its payment rows.
type BookingPayment struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID  uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method     enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	ExternalID *string             `gorm:"column:external_id;type:text;uniqueIndex:ux_booking_payments_external_id"`
	PaidAt     time.Time           `gorm:"column:paid_at;not null"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}
