package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
)

const bookingNotificationConsumer = "notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns booking lifecycle events into in-app supplier notifications.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds a booking notification consumer.
func NewConsumer(repo creator, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	notificationType, ok := notificationTypeFor(enums.OutboxEventType(eventType))
	if !ok {
		c.logg.Info(logCtx, "event does not produce a notification")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, bookingNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload bookingEventPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, bookingNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if payload.SupplierID == uuid.Nil {
		c.logg.Error(logCtx, "supplier id missing", fmt.Errorf("empty supplierId in %s", eventType))
		_ = c.idempotency.Delete(ctx, bookingNotificationConsumer, eventID)
		return processResult{ack: true}
	}

	if payload.Anomalous {
		notificationType = enums.NotificationPaymentAnomaly
	}
	notification := buildNotification(notificationType, payload)
	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, bookingNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "supplier notification created")
	return processResult{ack: true}
}

type bookingEventPayload struct {
	BookingID  uuid.UUID `json:"bookingId"`
	SupplierID uuid.UUID `json:"supplierId"`
	EventName  string    `json:"eventName,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Anomalous  bool      `json:"anomalous,omitempty"`
}

func notificationTypeFor(eventType enums.OutboxEventType) (enums.NotificationType, bool) {
	switch eventType {
	case enums.EventBookingConfirmed:
		return enums.NotificationBookingConfirmed, true
	case enums.EventBookingRejected:
		return enums.NotificationBookingRejected, true
	case enums.EventBookingStarted:
		return enums.NotificationBookingStarted, true
	case enums.EventBookingCompleted:
		return enums.NotificationBookingCompleted, true
	case enums.EventBookingCancelled:
		return enums.NotificationBookingCancelled, true
	case enums.EventBookingPaymentRecorded:
		return enums.NotificationPaymentRecorded, true
	default:
		return "", false
	}
}

func buildNotification(notificationType enums.NotificationType, payload bookingEventPayload) *models.Notification {
	event := payload.EventName
	if event == "" {
		event = "your event"
	}

	var title, message string
	switch notificationType {
	case enums.NotificationBookingConfirmed:
		title = "Booking confirmed"
		message = fmt.Sprintf("The booking for %s is confirmed.", event)
	case enums.NotificationBookingRejected:
		title = "Booking declined"
		message = fmt.Sprintf("The booking request for %s was declined.", event)
		if payload.Reason != "" {
			message = fmt.Sprintf("The booking request for %s was declined. Reason: %s", event, payload.Reason)
		}
	case enums.NotificationBookingStarted:
		title = "Service started"
		message = fmt.Sprintf("Service delivery for %s has started.", event)
	case enums.NotificationBookingCompleted:
		title = "Service completed"
		message = fmt.Sprintf("Service delivery for %s is complete.", event)
	case enums.NotificationBookingCancelled:
		title = "Booking cancelled"
		message = fmt.Sprintf("The booking for %s was cancelled.", event)
		if payload.Reason != "" {
			message = fmt.Sprintf("The booking for %s was cancelled. Reason: %s", event, payload.Reason)
		}
	case enums.NotificationPaymentRecorded:
		title = "Payment received"
		message = fmt.Sprintf("A payment was recorded for %s.", event)
	case enums.NotificationPaymentAnomaly:
		title = "Payment needs review"
		message = fmt.Sprintf("A payment on %s looks inconsistent and needs review.", event)
	}

	bookingID := payload.BookingID
	return &models.Notification{
		SupplierID: payload.SupplierID,
		Type:       notificationType,
		Title:      title,
		Message:    message,
		BookingID:  &bookingID,
	}
}
