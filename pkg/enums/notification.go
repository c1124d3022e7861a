package enums

import "fmt"

// NotificationType classifies in-app supplier notifications.
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationBookingStarted   NotificationType = "booking_started"
	NotificationBookingCompleted NotificationType = "booking_completed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationPaymentRecorded  NotificationType = "payment_recorded"
	NotificationPaymentAnomaly   NotificationType = "payment_anomaly"
)

var validNotificationTypes = []NotificationType{
	NotificationBookingConfirmed,
	NotificationBookingRejected,
	NotificationBookingStarted,
	NotificationBookingCompleted,
	NotificationBookingCancelled,
	NotificationPaymentRecorded,
	NotificationPaymentAnomaly,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
