package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
)

const defaultReconcileHorizonDays = 365

// AvailabilityReconcileJobParams configure the calendar reconciliation job.
type AvailabilityReconcileJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Bookings    bookingCalendarSource
	Calendar    calendarRepository
	HorizonDays int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingCalendarSource interface {
	ListHoldingCalendar(ctx context.Context, from time.Time) ([]models.Booking, error)
}

type calendarRepository interface {
	ListDerivedFrom(ctx context.Context, from time.Time) ([]models.BlockedDate, error)
	CreateWithTx(tx *gorm.DB, entry *models.BlockedDate) error
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

// NewAvailabilityReconcileJob constructs the calendar reconciliation job.
func NewAvailabilityReconcileJob(params AvailabilityReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking source required")
	}
	if params.Calendar == nil {
		return nil, fmt.Errorf("calendar repository required")
	}
	horizon := params.HorizonDays
	if horizon <= 0 {
		horizon = defaultReconcileHorizonDays
	}
	return &availabilityReconcileJob{
		logg:     params.Logger,
		db:       params.DB,
		bookings: params.Bookings,
		calendar: params.Calendar,
		horizon:  horizon,
		now:      time.Now,
	}, nil
}

type availabilityReconcileJob struct {
	logg     *logger.Logger
	db       txRunner
	bookings bookingCalendarSource
	calendar calendarRepository
	horizon  int
	now      func() time.Time
}

func (j *availabilityReconcileJob) Name() string { return "availability-reconcile" }

type expectedHold struct {
	supplierID uuid.UUID
	date       time.Time
	holdType   enums.BlockedDateType
}

// Run realigns booking-derived calendar entries with live booking state.
// Transitions normally maintain these rows inline; this sweep repairs any
// drift left behind by a crashed transition or manual data fix.
func (j *availabilityReconcileJob) Run(ctx context.Context) error {
	from := j.now().UTC().Truncate(24 * time.Hour)

	bookings, err := j.bookings.ListHoldingCalendar(ctx, from)
	if err != nil {
		return fmt.Errorf("list bookings holding calendar: %w", err)
	}
	expected := make(map[uuid.UUID]expectedHold, len(bookings))
	for _, booking := range bookings {
		if !withinHorizon(from, booking.EventDate, j.horizon) {
			continue
		}
		expected[booking.ID] = expectedHold{
			supplierID: booking.SupplierID,
			date:       booking.EventDate,
			holdType:   holdTypeFor(booking.Status),
		}
	}

	derived, err := j.calendar.ListDerivedFrom(ctx, from)
	if err != nil {
		return fmt.Errorf("list derived entries: %w", err)
	}

	var created, deleted int
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		matched := make(map[uuid.UUID]bool, len(expected))
		for _, entry := range derived {
			if entry.BookingID == nil {
				continue
			}
			want, ok := expected[*entry.BookingID]
			if ok && entry.Type == want.holdType && sameDay(entry.Date, want.date) {
				matched[*entry.BookingID] = true
				continue
			}
			// Orphaned or mismatched rows get removed; a mismatch is
			// recreated below from the booking's current state.
			if err := j.calendar.DeleteWithTx(tx, entry.ID); err != nil {
				return fmt.Errorf("delete entry %s: %w", entry.ID, err)
			}
			deleted++
		}
		for bookingID, want := range expected {
			if matched[bookingID] {
				continue
			}
			id := bookingID
			entry := &models.BlockedDate{
				SupplierID: want.supplierID,
				Date:       want.date,
				Type:       want.holdType,
				BookingID:  &id,
			}
			if err := j.calendar.CreateWithTx(tx, entry); err != nil {
				return fmt.Errorf("create entry for booking %s: %w", bookingID, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("availability reconcile: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"bookings": len(bookings),
		"created":  created,
		"deleted":  deleted,
	})
	j.logg.Info(logCtx, "availability reconcile complete")
	return nil
}

func holdTypeFor(status enums.BookingStatus) enums.BlockedDateType {
	if status == enums.BookingStatusPending {
		return enums.BlockedDateTypeRequested
	}
	return enums.BlockedDateTypeReserved
}

func withinHorizon(from, date time.Time, horizonDays int) bool {
	return !date.After(from.AddDate(0, 0, horizonDays))
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}
