package dashboard

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
)

const dashboardConsumerName = "dashboard"

type projector interface {
	Rebuild(ctx context.Context, supplierID uuid.UUID) (*Projection, error)
	Notify(ctx context.Context, supplierID uuid.UUID) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer keeps cached dashboard projections in sync with booking events.
type Consumer struct {
	service      projector
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds a dashboard projection consumer.
func NewConsumer(service projector, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("dashboard service required")
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
		service:      service,
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

var projectionEvents = map[enums.OutboxEventType]struct{}{
	enums.EventBookingConfirmed:       {},
	enums.EventBookingRejected:        {},
	enums.EventBookingStarted:         {},
	enums.EventBookingCompleted:       {},
	enums.EventBookingCancelled:       {},
	enums.EventBookingPaymentRecorded: {},
}

func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if _, ok := projectionEvents[enums.OutboxEventType(eventType)]; !ok {
		c.logg.Info(logCtx, "event does not affect the dashboard")
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

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, dashboardConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload struct {
		SupplierID uuid.UUID `json:"supplierId"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, dashboardConsumerName, eventID)
		return processResult{nack: true}
	}
	if payload.SupplierID == uuid.Nil {
		c.logg.Error(logCtx, "supplier id missing", fmt.Errorf("empty supplierId in %s", eventType))
		_ = c.idempotency.Delete(ctx, dashboardConsumerName, eventID)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithSupplierID(logCtx, payload.SupplierID.String())
	if _, err := c.service.Rebuild(ctx, payload.SupplierID); err != nil {
		c.logg.Error(logCtx, "projection rebuild failed", err)
		_ = c.idempotency.Delete(ctx, dashboardConsumerName, eventID)
		return processResult{nack: true}
	}
	if err := c.service.Notify(ctx, payload.SupplierID); err != nil {
		// The rebuild already refreshed the cache; a missed notification only
		// delays connected streams until the next event.
		c.logg.Warn(logCtx, "projection change notification failed")
	}

	c.logg.Info(logCtx, "dashboard projection refreshed")
	return processResult{ack: true}
}
