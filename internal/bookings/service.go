package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/metrics"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CalendarReserver keeps the supplier's availability calendar in sync with
// booking transitions.
type CalendarReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	Release(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

// Service defines booking lifecycle operations beyond repository reads.
type Service interface {
	Confirm(ctx context.Context, input TransitionInput) error
	Reject(ctx context.Context, input RejectInput) error
	Start(ctx context.Context, input TransitionInput) error
	Complete(ctx context.Context, input TransitionInput) error
	Cancel(ctx context.Context, input CancelInput) error
	UpdateSupplierNotes(ctx context.Context, input NotesInput) error
	RecordPayment(ctx context.Context, input PaymentInput) error
	List(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters ListFilters) (*List, error)
	Detail(ctx context.Context, supplierID, bookingID uuid.UUID) (*Detail, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	calendar CalendarReserver
	logg     *logger.Logger
	metrics  *metrics.BookingMetrics
}

// TransitionInput captures the data required to move a booking between states.
type TransitionInput struct {
	BookingID       uuid.UUID
	ActorUserID     uuid.UUID
	ActorSupplierID uuid.UUID
	ActorRole       string
}

// RejectInput carries an optional decline reason alongside the transition data.
type RejectInput struct {
	TransitionInput
	Reason *string
}

// CancelInput carries the mandatory cancellation reason.
type CancelInput struct {
	TransitionInput
	Reason string
}

// NotesInput updates the supplier-facing notes on a booking.
type NotesInput struct {
	BookingID       uuid.UUID
	ActorUserID     uuid.UUID
	ActorSupplierID uuid.UUID
	ActorRole       string
	SupplierNotes   *string
}

// PaymentInput records an incoming payment against a booking.
type PaymentInput struct {
	BookingID  uuid.UUID
	Amount     decimal.Decimal
	Method     enums.PaymentMethod
	ExternalID string
	PaidAt     time.Time
}

// NewService builds a booking lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, calendar CalendarReserver, logg *logger.Logger, bm *metrics.BookingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if calendar == nil {
		return nil, fmt.Errorf("calendar reserver required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   publisher,
		calendar: calendar,
		logg:     logg,
		metrics:  bm,
	}, nil
}

func (s *service) Confirm(ctx context.Context, input TransitionInput) error {
	return s.observe(enums.BookingStatusConfirmed, s.transition(ctx, input, transitionSpec{
		from:   enums.BookingStatusPending,
		to:     enums.BookingStatusConfirmed,
		action: "confirm",
		guard: func(ctx context.Context, booking *models.Booking) error {
			if booking.IsPaid() {
				if booking.PaymentInconsistent() && s.logg != nil {
					warnCtx := s.logg.WithFields(ctx, map[string]any{
						"booking_id":  booking.ID.String(),
						"paid_amount": booking.PaidAmount.String(),
					})
					s.logg.Warn(warnCtx, "payment recorded against zero-price booking, treating as paid")
				}
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeFailedPrecondition, "booking has no recorded payment")
		},
		apply: func(now time.Time, updates map[string]any) {
			updates["confirmed_at"] = now
		},
		after: func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
			return s.calendar.Reserve(ctx, tx, booking)
		},
		event: func(booking *models.Booking, input TransitionInput) outbox.DomainEvent {
			return decisionEvent(enums.EventBookingConfirmed, booking, input, "")
		},
	}))
}

func (s *service) Reject(ctx context.Context, input RejectInput) error {
	reason := ""
	if input.Reason != nil {
		reason = *input.Reason
	}
	return s.observe(enums.BookingStatusCancelled, s.transition(ctx, input.TransitionInput, transitionSpec{
		from:   enums.BookingStatusPending,
		to:     enums.BookingStatusCancelled,
		action: "reject",
		apply: func(now time.Time, updates map[string]any) {
			updates["cancelled_at"] = now
			if reason != "" {
				updates["cancellation_reason"] = reason
			}
		},
		after: func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
			// The reconcile sweep may have placed a requested hold on the
			// event date. Drop it so the date frees up immediately instead
			// of waiting for the next sweep.
			return s.calendar.Release(ctx, tx, booking.ID)
		},
		event: func(booking *models.Booking, input TransitionInput) outbox.DomainEvent {
			return decisionEvent(enums.EventBookingRejected, booking, input, reason)
		},
	}))
}

func (s *service) Start(ctx context.Context, input TransitionInput) error {
	return s.observe(enums.BookingStatusInProgress, s.transition(ctx, input, transitionSpec{
		from:   enums.BookingStatusConfirmed,
		to:     enums.BookingStatusInProgress,
		action: "start",
		apply: func(now time.Time, updates map[string]any) {
			updates["started_at"] = now
		},
		event: func(booking *models.Booking, input TransitionInput) outbox.DomainEvent {
			return progressEvent(enums.EventBookingStarted, booking, input)
		},
	}))
}

func (s *service) Complete(ctx context.Context, input TransitionInput) error {
	return s.observe(enums.BookingStatusCompleted, s.transition(ctx, input, transitionSpec{
		from:   enums.BookingStatusInProgress,
		to:     enums.BookingStatusCompleted,
		action: "complete",
		apply: func(now time.Time, updates map[string]any) {
			updates["completed_at"] = now
		},
		event: func(booking *models.Booking, input TransitionInput) outbox.DomainEvent {
			return progressEvent(enums.EventBookingCompleted, booking, input)
		},
	}))
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}
	return s.observe(enums.BookingStatusCancelled, s.transition(ctx, input.TransitionInput, transitionSpec{
		from:   enums.BookingStatusConfirmed,
		to:     enums.BookingStatusCancelled,
		action: "cancel",
		apply: func(now time.Time, updates map[string]any) {
			updates["cancelled_at"] = now
			updates["cancellation_reason"] = input.Reason
		},
		after: func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
			return s.calendar.Release(ctx, tx, booking.ID)
		},
		event: func(booking *models.Booking, ti TransitionInput) outbox.DomainEvent {
			return outbox.DomainEvent{
				EventType:     enums.EventBookingCancelled,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Actor:         buildActor(ti.ActorUserID, ti.ActorSupplierID, ti.ActorRole),
				Data: payloads.BookingCancelledEvent{
					BookingID:   booking.ID,
					SupplierID:  booking.SupplierID,
					ClientID:    booking.ClientID,
					EventDate:   booking.EventDate,
					CancelledAt: time.Now(),
					Reason:      input.Reason,
				},
			}
		},
	}))
}

// transitionSpec describes a single edge of the booking state machine.
type transitionSpec struct {
	from   enums.BookingStatus
	to     enums.BookingStatus
	action string
	guard  func(ctx context.Context, booking *models.Booking) error
	apply  func(now time.Time, updates map[string]any)
	after  func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	event  func(booking *models.Booking, input TransitionInput) outbox.DomainEvent
}

func (s *service) transition(ctx context.Context, input TransitionInput, spec transitionSpec) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorSupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		// Ownership is checked before any state or precondition rule so a
		// foreign supplier always sees permission-denied.
		if booking.SupplierID != input.ActorSupplierID {
			return pkgerrors.New(pkgerrors.CodePermissionDenied, "booking does not belong to supplier")
		}
		if booking.Status != spec.from {
			return pkgerrors.New(pkgerrors.CodeFailedPrecondition,
				fmt.Sprintf("cannot %s booking in status %s", spec.action, booking.Status))
		}
		if spec.guard != nil {
			if err := spec.guard(ctx, booking); err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]any{
			"status":             spec.to,
			"last_transition_by": input.ActorUserID,
		}
		if spec.apply != nil {
			spec.apply(now, updates)
		}
		if err := repo.UpdateBooking(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}

		booking.Status = spec.to
		booking.LastTransitionBy = &input.ActorUserID

		if spec.after != nil {
			if err := spec.after(ctx, tx, booking); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, spec.event(booking, input))
	})
}

// observe records transition metrics without altering the returned error.
func (s *service) observe(to enums.BookingStatus, err error) error {
	if s.metrics == nil {
		return err
	}
	if err == nil {
		s.metrics.IncTransition(string(to))
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejection(string(typed.Code()))
	}
	return err
}

func (s *service) UpdateSupplierNotes(ctx context.Context, input NotesInput) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorSupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.SupplierID != input.ActorSupplierID {
			return pkgerrors.New(pkgerrors.CodePermissionDenied, "booking does not belong to supplier")
		}

		if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
			"supplier_notes": input.SupplierNotes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier notes")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingNotesUpdated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorSupplierID, input.ActorRole),
			Data: payloads.BookingNotesUpdatedEvent{
				BookingID:  booking.ID,
				SupplierID: booking.SupplierID,
				UpdatedAt:  time.Now(),
			},
		})
	})
}

func (s *service) RecordPayment(ctx context.Context, input PaymentInput) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = time.Now()
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		payment := models.BookingPayment{
			BookingID: booking.ID,
			Amount:    input.Amount,
			Method:    input.Method,
			PaidAt:    input.PaidAt,
		}
		if input.ExternalID != "" {
			payment.ExternalID = &input.ExternalID
		}
		if err := repo.CreatePayment(ctx, &payment); err != nil {
			// A replayed webhook delivery hits the unique external id.
			if dbpkg.IsUniqueViolation(err, "ux_booking_payments_external_id") {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert payment")
		}

		if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
			"paid_amount": gorm.Expr("paid_amount + ?", input.Amount),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment amount")
		}

		anomalous := booking.TotalPrice.IsZero() ||
			booking.Status == enums.BookingStatusCancelled ||
			booking.Status == enums.BookingStatusRefunded
		if anomalous {
			if s.logg != nil {
				warnCtx := s.logg.WithFields(ctx, map[string]any{
					"booking_id": booking.ID.String(),
					"status":     booking.Status,
					"amount":     input.Amount.String(),
				})
				s.logg.Warn(warnCtx, "payment recorded against anomalous booking")
			}
			if s.metrics != nil {
				s.metrics.IncPaymentAnomaly()
			}
		}
		if s.metrics != nil {
			s.metrics.IncPayment(string(input.Method))
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingPaymentRecorded,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Data: payloads.PaymentRecordedEvent{
				BookingID:  booking.ID,
				SupplierID: booking.SupplierID,
				Amount:     input.Amount,
				Method:     input.Method,
				ExternalID: input.ExternalID,
				PaidAt:     input.PaidAt,
				Anomalous:  anomalous,
			},
		})
	})
}

func (s *service) List(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters ListFilters) (*List, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}

	rows, err := s.repo.ListSupplierBookings(ctx, supplierID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	page, hasMore := pagination.TrimPage(rows, params.Limit)
	summaries := make([]Summary, 0, len(page))
	for _, row := range page {
		summaries = append(summaries, newSummary(row, EvaluateFlags(row, true)))
	}

	list := &List{Bookings: summaries}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (s *service) Detail(ctx context.Context, supplierID, bookingID uuid.UUID) (*Detail, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	booking, err := s.repo.FindBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "booking does not belong to supplier")
	}

	detail := newDetail(*booking, EvaluateFlags(*booking, true))
	return &detail, nil
}

func decisionEvent(eventType enums.OutboxEventType, booking *models.Booking, input TransitionInput, reason string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         buildActor(input.ActorUserID, input.ActorSupplierID, input.ActorRole),
		Data: payloads.BookingDecisionEvent{
			BookingID:   booking.ID,
			SupplierID:  booking.SupplierID,
			ClientID:    booking.ClientID,
			Status:      booking.Status,
			EventDate:   booking.EventDate,
			EventName:   booking.EventName,
			TotalPrice:  booking.TotalPrice,
			PaidAmount:  booking.PaidAmount,
			PackageName: booking.PackageName,
			Reason:      reason,
		},
	}
}

func progressEvent(eventType enums.OutboxEventType, booking *models.Booking, input TransitionInput) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         buildActor(input.ActorUserID, input.ActorSupplierID, input.ActorRole),
		Data: payloads.BookingProgressEvent{
			BookingID:  booking.ID,
			SupplierID: booking.SupplierID,
			ClientID:   booking.ClientID,
			Status:     booking.Status,
			EventDate:  booking.EventDate,
			OccurredAt: time.Now(),
		},
	}
}

func buildActor(userID, supplierID uuid.UUID, role string) *outbox.ActorRef {
	supplier := supplierID
	return &outbox.ActorRef{
		UserID:     userID,
		SupplierID: &supplier,
		Role:       role,
	}
}

type calendarReserverImpl struct{}

// NewCalendarReserver exposes the default blocked-date reservation implementation.
func NewCalendarReserver() CalendarReserver {
	return calendarReserverImpl{}
}

func (calendarReserverImpl) Reserve(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for calendar reserve")
	}
	// A requested hold for this booking may already exist from the reconcile
	// sweep. Replace it so the calendar carries a single entry per booking.
	err := tx.WithContext(ctx).
		Where("booking_id = ?", booking.ID).
		Delete(&models.BlockedDate{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear prior hold")
	}
	entry := models.BlockedDate{
		SupplierID: booking.SupplierID,
		Date:       booking.EventDate,
		Type:       enums.BlockedDateTypeReserved,
		BookingID:  &booking.ID,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve event date")
	}
	return nil
}

func (calendarReserverImpl) Release(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for calendar release")
	}
	err := tx.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Delete(&models.BlockedDate{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release event date")
	}
	return nil
}
