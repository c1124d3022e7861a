package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

// Repository defines persistence operations for booking tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindBookingDetail(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindPaymentByExternalID(ctx context.Context, externalID string) (*models.BookingPayment, error)
	ListSupplierBookings(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Booking, error)
	ListUpcoming(ctx context.Context, supplierID uuid.UUID, from time.Time, limit int) ([]models.Booking, error)
	ListHoldingCalendar(ctx context.Context, from time.Time) ([]models.Booking, error)
	CountByStatus(ctx context.Context, supplierID uuid.UUID, status enums.BookingStatus) (int64, error)
	CreatePayment(ctx context.Context, payment *models.BookingPayment) error
	UpdateBooking(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error
}
