package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
)

type fakeBookingSource struct {
	bookings []models.Booking
}

func (f *fakeBookingSource) ListHoldingCalendar(ctx context.Context, from time.Time) ([]models.Booking, error) {
	return f.bookings, nil
}

type fakeCalendarRepo struct {
	derived []models.BlockedDate
	created []models.BlockedDate
	deleted []uuid.UUID
}

func (f *fakeCalendarRepo) ListDerivedFrom(ctx context.Context, from time.Time) ([]models.BlockedDate, error) {
	return f.derived, nil
}

func (f *fakeCalendarRepo) CreateWithTx(tx *gorm.DB, entry *models.BlockedDate) error {
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakeCalendarRepo) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newReconcileJob(t *testing.T, bookings *fakeBookingSource, calendar *fakeCalendarRepo) *availabilityReconcileJob {
	t.Helper()
	jobIface, err := NewAvailabilityReconcileJob(AvailabilityReconcileJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		DB:       fakeTxRunner{},
		Bookings: bookings,
		Calendar: calendar,
	})
	if err != nil {
		t.Fatalf("NewAvailabilityReconcileJob: %v", err)
	}
	job, ok := jobIface.(*availabilityReconcileJob)
	if !ok {
		t.Fatalf("expected availabilityReconcileJob, got %T", jobIface)
	}
	return job
}

func TestAvailabilityReconcileCreatesMissingHolds(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	supplierID := uuid.New()
	booking := models.Booking{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Status:     enums.BookingStatusConfirmed,
		EventDate:  eventDate,
	}
	calendar := &fakeCalendarRepo{}
	job := newReconcileJob(t, &fakeBookingSource{bookings: []models.Booking{booking}}, calendar)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calendar.created) != 1 {
		t.Fatalf("expected 1 created entry, got %d", len(calendar.created))
	}
	entry := calendar.created[0]
	if entry.Type != enums.BlockedDateTypeReserved {
		t.Fatalf("expected reserved entry, got %s", entry.Type)
	}
	if entry.BookingID == nil || *entry.BookingID != booking.ID {
		t.Fatalf("expected entry to reference booking %s", booking.ID)
	}
	if entry.SupplierID != supplierID {
		t.Fatalf("expected supplier %s, got %s", supplierID, entry.SupplierID)
	}
}

func TestAvailabilityReconcileDeletesOrphanedHolds(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	orphanBookingID := uuid.New()
	orphan := models.BlockedDate{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Date:       time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Type:       enums.BlockedDateTypeReserved,
		BookingID:  &orphanBookingID,
	}
	calendar := &fakeCalendarRepo{derived: []models.BlockedDate{orphan}}
	job := newReconcileJob(t, &fakeBookingSource{}, calendar)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calendar.deleted) != 1 || calendar.deleted[0] != orphan.ID {
		t.Fatalf("expected orphan %s deleted, got %v", orphan.ID, calendar.deleted)
	}
	if len(calendar.created) != 0 {
		t.Fatalf("expected no created entries, got %d", len(calendar.created))
	}
}

func TestAvailabilityReconcileReplacesStaleHoldType(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	booking := models.Booking{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Status:     enums.BookingStatusConfirmed,
		EventDate:  eventDate,
	}
	// The entry still carries the pre-confirmation hold type.
	stale := models.BlockedDate{
		ID:         uuid.New(),
		SupplierID: booking.SupplierID,
		Date:       eventDate,
		Type:       enums.BlockedDateTypeRequested,
		BookingID:  &booking.ID,
	}
	calendar := &fakeCalendarRepo{derived: []models.BlockedDate{stale}}
	job := newReconcileJob(t, &fakeBookingSource{bookings: []models.Booking{booking}}, calendar)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calendar.deleted) != 1 || calendar.deleted[0] != stale.ID {
		t.Fatalf("expected stale entry deleted, got %v", calendar.deleted)
	}
	if len(calendar.created) != 1 || calendar.created[0].Type != enums.BlockedDateTypeReserved {
		t.Fatalf("expected reserved replacement, got %+v", calendar.created)
	}
}

func TestAvailabilityReconcileLeavesMatchingHoldsAlone(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	booking := models.Booking{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Status:     enums.BookingStatusPending,
		EventDate:  eventDate,
	}
	entry := models.BlockedDate{
		ID:         uuid.New(),
		SupplierID: booking.SupplierID,
		Date:       eventDate,
		Type:       enums.BlockedDateTypeRequested,
		BookingID:  &booking.ID,
	}
	calendar := &fakeCalendarRepo{derived: []models.BlockedDate{entry}}
	job := newReconcileJob(t, &fakeBookingSource{bookings: []models.Booking{booking}}, calendar)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calendar.deleted) != 0 || len(calendar.created) != 0 {
		t.Fatalf("expected no changes, got created=%d deleted=%d", len(calendar.created), len(calendar.deleted))
	}
}
