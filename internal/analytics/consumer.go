package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
)

const analyticsConsumerName = "analytics"

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer writes booking lifecycle events to BigQuery while honoring Redis
// idempotency.
type Consumer struct {
	client       tableInserter
	table        string
	subscription *pubsub.Subscriber
	manager      idempotencyChecker
	logg         *logger.Logger
	eventFilter  map[enums.OutboxEventType]struct{}
}

// NewConsumer builds a new analytics consumer.
func NewConsumer(client tableInserter, table string, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("bigquery table name required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		client:  client,
		table:   strings.TrimSpace(table),
		manager: manager,
		logg:    logg,
		eventFilter: map[enums.OutboxEventType]struct{}{
			enums.EventBookingConfirmed:       {},
			enums.EventBookingRejected:        {},
			enums.EventBookingStarted:         {},
			enums.EventBookingCompleted:       {},
			enums.EventBookingCancelled:       {},
			enums.EventBookingPaymentRecorded: {},
		},
	}, nil
}

// WithSubscription attaches the Pub/Sub subscriber used by Run.
func (c *Consumer) WithSubscription(subscription *pubsub.Subscriber) *Consumer {
	c.subscription = subscription
	return c
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("subscription not configured")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		eventType := enums.OutboxEventType(msg.Attributes["event_type"])
		var envelope outbox.PayloadEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			c.logg.Error(ctx, "failed to decode envelope", err)
			msg.Ack()
			return
		}
		if err := c.Process(ctx, eventType, envelope); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Process ingests the outbox envelope into BigQuery if the event is supported.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if _, ok := c.eventFilter[eventType]; !ok {
		c.logg.Info(logCtx, "event not handled by analytics consumer")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, analyticsConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	row, err := buildRow(eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build booking event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return err
	}

	if err := c.client.InsertRows(ctx, c.table, []any{row}); err != nil {
		c.logg.Error(logCtx, "failed to insert booking event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "booking event ingested")
	return nil
}

type bookingEventRow struct {
	EventID    string             `bigquery:"event_id"`
	EventType  string             `bigquery:"event_type"`
	OccurredAt time.Time          `bigquery:"occurred_at"`
	BookingID  *string            `bigquery:"booking_id"`
	SupplierID *string            `bigquery:"supplier_id"`
	ClientID   *string            `bigquery:"client_id"`
	Status     *string            `bigquery:"status"`
	Payload    cbigquery.NullJSON `bigquery:"payload"`
}

func buildRow(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (*bookingEventRow, error) {
	payload := map[string]any{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		if payload == nil {
			payload = map[string]any{}
		}
	}

	payloadJSON := cbigquery.NullJSON{}
	if len(envelope.Data) > 0 {
		payloadJSON.Valid = true
		payloadJSON.JSONVal = string(envelope.Data)
	}

	return &bookingEventRow{
		EventID:    envelope.EventID,
		EventType:  string(eventType),
		OccurredAt: envelope.OccurredAt,
		BookingID:  stringValue(payload, "bookingId"),
		SupplierID: stringValue(payload, "supplierId"),
		ClientID:   stringValue(payload, "clientId"),
		Status:     stringValue(payload, "status"),
		Payload:    payloadJSON,
	}, nil
}

func stringValue(payload map[string]any, key string) *string {
	if payload == nil {
		return nil
	}
	if raw, ok := payload[key]; ok {
		if str, ok := raw.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed != "" {
				return &trimmed
			}
		}
	}
	return nil
}
