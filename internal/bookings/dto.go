package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// ListFilters describe the inputs supported by the supplier bookings list.
type ListFilters struct {
	Status   *enums.BookingStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Query    string
}

// Summary exposes the aggregated fields returned in the bookings list.
type Summary struct {
	ID          uuid.UUID           `json:"id"`
	Status      enums.BookingStatus `json:"status"`
	EventName   string              `json:"eventName"`
	EventDate   time.Time           `json:"eventDate"`
	PackageName string              `json:"packageName"`
	TotalPrice  decimal.Decimal     `json:"totalPrice"`
	PaidAmount  decimal.Decimal     `json:"paidAmount"`
	Currency    enums.Currency      `json:"currency"`
	GuestCount  *int                `json:"guestCount,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UIFlags     UIFlags             `json:"uiFlags"`
}

// List wraps the paginated bookings plus the next page cursor.
type List struct {
	Bookings   []Summary `json:"bookings"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// PaymentView is one payment row rendered in the booking detail.
type PaymentView struct {
	ID     uuid.UUID           `json:"id"`
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method"`
	PaidAt time.Time           `json:"paidAt"`
}

// Detail is the full booking payload returned to the owning supplier.
type Detail struct {
	ID                     uuid.UUID           `json:"id"`
	Status                 enums.BookingStatus `json:"status"`
	ClientID               uuid.UUID           `json:"clientId"`
	EventName              string              `json:"eventName"`
	EventDate              time.Time           `json:"eventDate"`
	EventTime              *string             `json:"eventTime,omitempty"`
	EventLocation          *string             `json:"eventLocation,omitempty"`
	EventType              *string             `json:"eventType,omitempty"`
	GuestCount             *int                `json:"guestCount,omitempty"`
	PackageID              uuid.UUID           `json:"packageId"`
	PackageName            string              `json:"packageName"`
	SelectedCustomizations []string            `json:"selectedCustomizations,omitempty"`
	TotalPrice             decimal.Decimal     `json:"totalPrice"`
	PaidAmount             decimal.Decimal     `json:"paidAmount"`
	Currency               enums.Currency      `json:"currency"`
	Notes                  *string             `json:"notes,omitempty"`
	ClientNotes            *string             `json:"clientNotes,omitempty"`
	SupplierNotes          *string             `json:"supplierNotes,omitempty"`
	CancellationReason     *string             `json:"cancellationReason,omitempty"`
	ConfirmedAt            *time.Time          `json:"confirmedAt,omitempty"`
	StartedAt              *time.Time          `json:"startedAt,omitempty"`
	CompletedAt            *time.Time          `json:"completedAt,omitempty"`
	CancelledAt            *time.Time          `json:"cancelledAt,omitempty"`
	Payments               []PaymentView       `json:"payments"`
	UIFlags                UIFlags             `json:"uiFlags"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

func newSummary(b models.Booking, flags UIFlags) Summary {
	return Summary{
		ID:          b.ID,
		Status:      b.Status,
		EventName:   b.EventName,
		EventDate:   b.EventDate,
		PackageName: b.PackageName,
		TotalPrice:  b.TotalPrice,
		PaidAmount:  b.PaidAmount,
		Currency:    b.Currency,
		GuestCount:  b.GuestCount,
		CreatedAt:   b.CreatedAt,
		UIFlags:     flags,
	}
}

func newDetail(b models.Booking, flags UIFlags) Detail {
	payments := make([]PaymentView, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, PaymentView{
			ID:     p.ID,
			Amount: p.Amount,
			Method: p.Method,
			PaidAt: p.PaidAt,
		})
	}
	return Detail{
		ID:                     b.ID,
		Status:                 b.Status,
		ClientID:               b.ClientID,
		EventName:              b.EventName,
		EventDate:              b.EventDate,
		EventTime:              b.EventTime,
		EventLocation:          b.EventLocation,
		EventType:              b.EventType,
		GuestCount:             b.GuestCount,
		PackageID:              b.PackageID,
		PackageName:            b.PackageName,
		SelectedCustomizations: b.SelectedCustomizations,
		TotalPrice:             b.TotalPrice,
		PaidAmount:             b.PaidAmount,
		Currency:               b.Currency,
		Notes:                  b.Notes,
		ClientNotes:            b.ClientNotes,
		SupplierNotes:          b.SupplierNotes,
		CancellationReason:     b.CancellationReason,
		ConfirmedAt:            b.ConfirmedAt,
		StartedAt:              b.StartedAt,
		CompletedAt:            b.CompletedAt,
		CancelledAt:            b.CancelledAt,
		Payments:               payments,
		UIFlags:                flags,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}
