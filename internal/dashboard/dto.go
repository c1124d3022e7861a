package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// Projection is the cached dashboard view for one supplier. It is recomputed
// from bookings whenever a lifecycle event lands and served from Redis.
type Projection struct {
	SupplierID     uuid.UUID       `json:"supplierId"`
	PendingCount   int64           `json:"pendingCount"`
	ConfirmedCount int64           `json:"confirmedCount"`
	RecentBookings []BookingCard   `json:"recentBookings"`
	UpcomingEvents []UpcomingEvent `json:"upcomingEvents"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// BookingCard is the compact booking row shown on the dashboard.
type BookingCard struct {
	ID          uuid.UUID           `json:"id"`
	Status      enums.BookingStatus `json:"status"`
	EventName   string              `json:"eventName"`
	EventDate   time.Time           `json:"eventDate"`
	PackageName string              `json:"packageName"`
	TotalPrice  decimal.Decimal     `json:"totalPrice"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// UpcomingEvent is a confirmed or in-progress booking with a future event date.
type UpcomingEvent struct {
	BookingID uuid.UUID           `json:"bookingId"`
	Status    enums.BookingStatus `json:"status"`
	EventName string              `json:"eventName"`
	EventDate time.Time           `json:"eventDate"`
}

func newBookingCard(b models.Booking) BookingCard {
	return BookingCard{
		ID:          b.ID,
		Status:      b.Status,
		EventName:   b.EventName,
		EventDate:   b.EventDate,
		PackageName: b.PackageName,
		TotalPrice:  b.TotalPrice,
		CreatedAt:   b.CreatedAt,
	}
}

func newUpcomingEvent(b models.Booking) UpcomingEvent {
	return UpcomingEvent{
		BookingID: b.ID,
		Status:    b.Status,
		EventName: b.EventName,
		EventDate: b.EventDate,
	}
}
