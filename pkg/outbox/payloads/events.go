package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// BookingDecisionEvent is emitted when a supplier confirms or rejects a pending booking.
type BookingDecisionEvent struct {
	BookingID   uuid.UUID           `json:"bookingId"`
	SupplierID  uuid.UUID           `json:"supplierId"`
	ClientID    uuid.UUID           `json:"clientId"`
	Status      enums.BookingStatus `json:"status"`
	EventDate   time.Time           `json:"eventDate"`
	EventName   string              `json:"eventName"`
	TotalPrice  decimal.Decimal     `json:"totalPrice"`
	PaidAmount  decimal.Decimal     `json:"paidAmount"`
	PackageName string              `json:"packageName,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

// BookingProgressEvent surfaces start and completion of service delivery.
type BookingProgressEvent struct {
	BookingID  uuid.UUID           `json:"bookingId"`
	SupplierID uuid.UUID           `json:"supplierId"`
	ClientID   uuid.UUID           `json:"clientId"`
	Status     enums.BookingStatus `json:"status"`
	EventDate  time.Time           `json:"eventDate"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// BookingCancelledEvent is emitted whenever a confirmed booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"bookingId"`
	SupplierID  uuid.UUID `json:"supplierId"`
	ClientID    uuid.UUID `json:"clientId"`
	EventDate   time.Time `json:"eventDate"`
	CancelledAt time.Time `json:"cancelledAt"`
	Reason      string    `json:"reason,omitempty"`
}

// PaymentRecordedEvent reports an incoming client payment applied to a booking.
type PaymentRecordedEvent struct {
	BookingID  uuid.UUID           `json:"bookingId"`
	SupplierID uuid.UUID           `json:"supplierId"`
	Amount     decimal.Decimal     `json:"amount"`
	Method     enums.PaymentMethod `json:"method"`
	ExternalID string              `json:"externalId"`
	PaidAt     time.Time           `json:"paidAt"`
	Anomalous  bool                `json:"anomalous,omitempty"`
}

// BookingNotesUpdatedEvent tracks supplier note edits for analytics.
type BookingNotesUpdatedEvent struct {
	BookingID  uuid.UUID `json:"bookingId"`
	SupplierID uuid.UUID `json:"supplierId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SupplierStatusChangedEvent mirrors the payload emitted when account status updates.
type SupplierStatusChangedEvent struct {
	SupplierID uuid.UUID           `json:"supplierId"`
	Status     enums.AccountStatus `json:"status"`
	Reason     string              `json:"reason,omitempty"`
}

// PackageChangedEvent announces package create/update/archive so projections stay fresh.
type PackageChangedEvent struct {
	PackageID  uuid.UUID              `json:"packageId"`
	SupplierID uuid.UUID              `json:"supplierId"`
	Category   enums.SupplierCategory `json:"category"`
	IsActive   bool                   `json:"isActive"`
	Change     string                 `json:"change"`
}
