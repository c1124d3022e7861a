package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBooking     OutboxAggregateType = "booking"
	AggregateSupplier    OutboxAggregateType = "supplier"
	AggregatePackage     OutboxAggregateType = "package"
	AggregateBlockedDate OutboxAggregateType = "blocked_date"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregateSupplier,
	AggregatePackage,
	AggregateBlockedDate,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookingConfirmed       OutboxEventType = "booking_confirmed"
	EventBookingRejected        OutboxEventType = "booking_rejected"
	EventBookingStarted         OutboxEventType = "booking_started"
	EventBookingCompleted       OutboxEventType = "booking_completed"
	EventBookingCancelled       OutboxEventType = "booking_cancelled"
	EventBookingPaymentRecorded OutboxEventType = "booking_payment_recorded"
	EventBookingNotesUpdated    OutboxEventType = "booking_notes_updated"
	EventSupplierStatusChanged  OutboxEventType = "supplier_status_changed"
	EventPackageChanged         OutboxEventType = "package_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingConfirmed,
	EventBookingRejected,
	EventBookingStarted,
	EventBookingCompleted,
	EventBookingCancelled,
	EventBookingPaymentRecorded,
	EventBookingNotesUpdated,
	EventSupplierStatusChanged,
	EventPackageChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
