package enums

import "fmt"

// BookingStatus tracks the lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusDisputed   BookingStatus = "disputed"
	BookingStatusRefunded   BookingStatus = "refunded"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusDisputed,
	BookingStatusRefunded,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a booking in this status can never transition again.
func (b BookingStatus) IsTerminal() bool {
	switch b {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	default:
		return false
	}
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
