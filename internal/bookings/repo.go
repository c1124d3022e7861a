package bookings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindBookingForUpdate takes a row lock so concurrent transitions on the same
// booking serialize; callers must already be inside a transaction.
func (r *repository) FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingDetail(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindPaymentByExternalID(ctx context.Context, externalID string) (*models.BookingPayment, error) {
	var payment models.BookingPayment
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListSupplierBookings(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("supplier_id = ?", supplierID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("event_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("event_date <= ?", *filters.DateTo)
	}
	if filters.Query != "" {
		pattern := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("(LOWER(event_name) LIKE ? OR LOWER(package_name) LIKE ?)", pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Booking
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListUpcoming(ctx context.Context, supplierID uuid.UUID, from time.Time, limit int) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Where("status IN ?", []enums.BookingStatus{
			enums.BookingStatusConfirmed,
			enums.BookingStatusInProgress,
		}).
		Where("event_date >= ?", from).
		Order("event_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListHoldingCalendar(ctx context.Context, from time.Time) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.BookingStatus{
			enums.BookingStatusPending,
			enums.BookingStatusConfirmed,
			enums.BookingStatusInProgress,
		}).
		Where("event_date >= ?", from).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context, supplierID uuid.UUID, status enums.BookingStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("supplier_id = ? AND status = ?", supplierID, status).
		Count(&count).Error
	return count, err
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.BookingPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) UpdateBooking(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}
