package paymentwebhook

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
)

type paymentRecorder interface {
	RecordPayment(ctx context.Context, input bookings.PaymentInput) error
}

type Service struct {
	bookings paymentRecorder
}

func NewService(recorder paymentRecorder) (*Service, error) {
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking service required")
	}
	return &Service{bookings: recorder}, nil
}

// PaymentEvent is the envelope delivered by the payment processor.
type PaymentEvent struct {
	EventID string           `json:"event_id"`
	Type    string           `json:"type"`
	Data    PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
	PaidAt    string `json:"paid_at"`
}

// HandleEvent processes payment processor events. Types other than a
// successful payment are acknowledged without action.
func (s *Service) HandleEvent(ctx context.Context, event *PaymentEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment event required")
	}

	switch strings.ToLower(event.Type) {
	case "payment.succeeded", "payment.captured":
		return s.recordPayment(ctx, event)
	default:
		return nil
	}
}

func (s *Service) recordPayment(ctx context.Context, event *PaymentEvent) error {
	bookingID, err := uuid.Parse(event.Data.BookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id")
	}
	amount, err := decimal.NewFromString(event.Data.Amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	method, err := enums.ParsePaymentMethod(event.Data.Method)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	paidAt := time.Now().UTC()
	if event.Data.PaidAt != "" {
		parsed, parseErr := time.Parse(time.RFC3339, event.Data.PaidAt)
		if parseErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid paid_at timestamp")
		}
		paidAt = parsed
	}

	return s.bookings.RecordPayment(ctx, bookings.PaymentInput{
		BookingID:  bookingID,
		Amount:     amount,
		Method:     method,
		ExternalID: event.Data.PaymentID,
		PaidAt:     paidAt,
	})
}
