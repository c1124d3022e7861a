package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  client_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  event_name TEXT NOT NULL,
  event_date DATETIME NOT NULL,
  event_time TEXT,
  event_location TEXT,
  event_type TEXT,
  guest_count INTEGER,
  package_id TEXT NOT NULL,
  package_name TEXT NOT NULL,
  selected_customizations TEXT,
  total_price NUMERIC NOT NULL,
  paid_amount NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'USD',
  notes TEXT,
  client_notes TEXT,
  supplier_notes TEXT,
  cancelled_at DATETIME,
  cancellation_reason TEXT,
  confirmed_at DATETIME,
  started_at DATETIME,
  completed_at DATETIME,
  last_transition_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS booking_payments (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL,
  external_id TEXT UNIQUE,
  paid_at DATETIME NOT NULL,
  created_at DATETIME
);`
	blocked := `
CREATE TABLE IF NOT EXISTS blocked_dates (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  supplier_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  type TEXT NOT NULL,
  reason TEXT,
  booking_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(bookings).Error)
	require.NoError(t, db.Exec(payments).Error)
	require.NoError(t, db.Exec(blocked).Error)
	return db
}

type bookingSeed struct {
	supplierID uuid.UUID
	status     enums.BookingStatus
	eventName  string
	eventDate  time.Time
	created    time.Time
	totalPrice decimal.Decimal
}

func createBooking(t *testing.T, db *gorm.DB, seed bookingSeed) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ID:          uuid.New(),
		Status:      seed.status,
		ClientID:    uuid.New(),
		SupplierID:  seed.supplierID,
		EventName:   seed.eventName,
		EventDate:   seed.eventDate,
		PackageID:   uuid.New(),
		PackageName: "Gold Wedding Package",
		TotalPrice:  seed.totalPrice,
		PaidAmount:  decimal.Zero,
		Currency:    enums.CurrencyUSD,
		CreatedAt:   seed.created,
		UpdatedAt:   seed.created,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestRepositoryListSupplierBookings_pagination(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	supplierID := uuid.New()
	now := time.Now().UTC()
	eventDate := now.AddDate(0, 1, 0)

	older := createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusConfirmed,
		eventName:  "Rivera Wedding",
		eventDate:  eventDate,
		created:    now.Add(-time.Hour),
		totalPrice: decimal.NewFromInt(2500),
	})
	newer := createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusPending,
		eventName:  "Okafor Reception",
		eventDate:  eventDate,
		created:    now,
		totalPrice: decimal.NewFromInt(1800),
	})

	rows, err := repo.ListSupplierBookings(context.Background(), supplierID, pagination.Params{Limit: 1}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, rows, 2) // buffered fetch returns limit+1
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: rows[0].CreatedAt, ID: rows[0].ID})
	second, err := repo.ListSupplierBookings(context.Background(), supplierID, pagination.Params{Limit: 1, Cursor: cursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
}

func TestRepositoryListSupplierBookings_filtersAndSearch(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	supplierID := uuid.New()
	now := time.Now().UTC()

	match := createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusConfirmed,
		eventName:  "Castellanos Wedding",
		eventDate:  now.AddDate(0, 2, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(4200),
	})
	createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusCancelled,
		eventName:  "Nguyen Anniversary",
		eventDate:  now.AddDate(0, 6, 0),
		created:    now.Add(-time.Minute),
		totalPrice: decimal.NewFromInt(900),
	})

	status := enums.BookingStatusConfirmed
	from := now.AddDate(0, 1, 0)
	to := now.AddDate(0, 3, 0)
	rows, err := repo.ListSupplierBookings(context.Background(), supplierID, pagination.Params{Limit: 10}, ListFilters{
		Status:   &status,
		DateFrom: &from,
		DateTo:   &to,
		Query:    "castellanos",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, match.ID, rows[0].ID)

	rows, err = repo.ListSupplierBookings(context.Background(), supplierID, pagination.Params{Limit: 10}, ListFilters{Query: "no such event"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryListUpcoming(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	supplierID := uuid.New()
	now := time.Now().UTC()

	soon := createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusConfirmed,
		eventName:  "Park Ceremony",
		eventDate:  now.AddDate(0, 0, 7),
		created:    now,
		totalPrice: decimal.NewFromInt(1500),
	})
	later := createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusInProgress,
		eventName:  "Marsh Gala",
		eventDate:  now.AddDate(0, 0, 30),
		created:    now,
		totalPrice: decimal.NewFromInt(5000),
	})
	// Pending and past bookings never appear in the upcoming feed.
	createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusPending,
		eventName:  "Holt Shower",
		eventDate:  now.AddDate(0, 0, 3),
		created:    now,
		totalPrice: decimal.NewFromInt(300),
	})
	createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusConfirmed,
		eventName:  "Finished Event",
		eventDate:  now.AddDate(0, 0, -2),
		created:    now,
		totalPrice: decimal.NewFromInt(700),
	})

	rows, err := repo.ListUpcoming(context.Background(), supplierID, now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, soon.ID, rows[0].ID)
	assert.Equal(t, later.ID, rows[1].ID)
}

func TestRepositoryCountByStatus(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	supplierID := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		createBooking(t, db, bookingSeed{
			supplierID: supplierID,
			status:     enums.BookingStatusPending,
			eventName:  "Pending Event",
			eventDate:  now.AddDate(0, 1, 0),
			created:    now,
			totalPrice: decimal.NewFromInt(100),
		})
	}
	createBooking(t, db, bookingSeed{
		supplierID: supplierID,
		status:     enums.BookingStatusConfirmed,
		eventName:  "Confirmed Event",
		eventDate:  now.AddDate(0, 1, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(100),
	})

	count, err := repo.CountByStatus(context.Background(), supplierID, enums.BookingStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountByStatus(context.Background(), uuid.New(), enums.BookingStatusPending)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepositoryPayments(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	booking := createBooking(t, db, bookingSeed{
		supplierID: uuid.New(),
		status:     enums.BookingStatusConfirmed,
		eventName:  "Deluca Wedding",
		eventDate:  now.AddDate(0, 1, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(3000),
	})

	externalID := "ch_test_123"
	first := &models.BookingPayment{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		Amount:     decimal.NewFromInt(1000),
		Method:     enums.PaymentMethodCard,
		ExternalID: &externalID,
		PaidAt:     now.Add(-time.Hour),
	}
	require.NoError(t, repo.CreatePayment(context.Background(), first))

	second := &models.BookingPayment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		Amount:    decimal.NewFromInt(2000),
		Method:    enums.PaymentMethodBankTransfer,
		PaidAt:    now,
	}
	require.NoError(t, repo.CreatePayment(context.Background(), second))

	found, err := repo.FindPaymentByExternalID(context.Background(), externalID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	detail, err := repo.FindBookingDetail(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, detail.Payments, 2)
	assert.Equal(t, first.ID, detail.Payments[0].ID) // ordered by paid_at
	assert.Equal(t, second.ID, detail.Payments[1].ID)
}

func TestRepositoryUpdateBooking(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	booking := createBooking(t, db, bookingSeed{
		supplierID: uuid.New(),
		status:     enums.BookingStatusPending,
		eventName:  "Iwu Wedding",
		eventDate:  now.AddDate(0, 1, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(2000),
	})

	confirmedAt := now
	err := repo.UpdateBooking(context.Background(), booking.ID, map[string]any{
		"status":       enums.BookingStatusConfirmed,
		"confirmed_at": confirmedAt,
	})
	require.NoError(t, err)

	updated, err := repo.FindBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)
}

func TestCalendarReserverReplacesRequestedHold(t *testing.T) {
	db := setupBookingsTestDB(t)

	now := time.Now().UTC()
	booking := createBooking(t, db, bookingSeed{
		supplierID: uuid.New(),
		status:     enums.BookingStatusPending,
		eventName:  "Moreau Wedding",
		eventDate:  now.AddDate(0, 1, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(1800),
	})

	// Seed the requested hold the reconcile sweep would have written.
	hold := &models.BlockedDate{
		ID:         uuid.New(),
		SupplierID: booking.SupplierID,
		Date:       booking.EventDate,
		Type:       enums.BlockedDateTypeRequested,
		BookingID:  &booking.ID,
	}
	require.NoError(t, db.Create(hold).Error)

	reserver := NewCalendarReserver()
	require.NoError(t, reserver.Reserve(context.Background(), db, booking))

	var entries []models.BlockedDate
	require.NoError(t, db.Where("booking_id = ?", booking.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.BlockedDateTypeReserved, entries[0].Type)
}

func TestCalendarReserverReleaseRemovesHold(t *testing.T) {
	db := setupBookingsTestDB(t)

	now := time.Now().UTC()
	booking := createBooking(t, db, bookingSeed{
		supplierID: uuid.New(),
		status:     enums.BookingStatusPending,
		eventName:  "Okafor Wedding",
		eventDate:  now.AddDate(0, 2, 0),
		created:    now,
		totalPrice: decimal.NewFromInt(900),
	})
	hold := &models.BlockedDate{
		ID:         uuid.New(),
		SupplierID: booking.SupplierID,
		Date:       booking.EventDate,
		Type:       enums.BlockedDateTypeRequested,
		BookingID:  &booking.ID,
	}
	require.NoError(t, db.Create(hold).Error)

	reserver := NewCalendarReserver()
	require.NoError(t, reserver.Release(context.Background(), db, booking.ID))

	var count int64
	require.NoError(t, db.Model(&models.BlockedDate{}).Where("booking_id = ?", booking.ID).Count(&count).Error)
	assert.Zero(t, count)
}
