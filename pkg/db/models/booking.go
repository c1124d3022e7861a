package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/types"
)

// Booking is a client's purchase of a supplier package for an event. The
// package fields are a snapshot taken at booking time and deliberately do not
// follow later edits to the source package.
type Booking struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status     enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	ClientID   uuid.UUID           `gorm:"column:client_id;type:uuid;not null"`
	SupplierID uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`

	EventName     string     `gorm:"column:event_name;type:text;not null"`
	EventDate     time.Time  `gorm:"column:event_date;type:date;not null"`
	EventTime     *string    `gorm:"column:event_time;type:text"`
	EventLocation *string    `gorm:"column:event_location;type:text"`
	EventType     *string    `gorm:"column:event_type;type:text"`
	GuestCount    *int       `gorm:"column:guest_count"`

	PackageID              uuid.UUID        `gorm:"column:package_id;type:uuid;not null"`
	PackageName            string           `gorm:"column:package_name;type:text;not null"`
	SelectedCustomizations types.StringList `gorm:"column:selected_customizations;type:jsonb;serializer:json"`

	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaidAmount decimal.Decimal `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	Currency   enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`

	Notes         *string `gorm:"column:notes;type:text"`
	ClientNotes   *string `gorm:"column:client_notes;type:text"`
	SupplierNotes *string `gorm:"column:supplier_notes;type:text"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	StartedAt          *time.Time `gorm:"column:started_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	LastTransitionBy   *uuid.UUID `gorm:"column:last_transition_by;type:uuid"`

	Payments []BookingPayment `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPaid reports whether any payment has been recorded against the booking.
func (b Booking) IsPaid() bool {
	return b.PaidAmount.IsPositive()
}

// PaymentInconsistent reports the data-quality anomaly where money has been
// recorded against a zero-priced booking. Callers treat it as payment-satisfied
// but log it.
func (b Booking) PaymentInconsistent() bool {
	return b.PaidAmount.IsPositive() && b.TotalPrice.IsZero()
}
