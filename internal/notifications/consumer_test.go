package notifications

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
)

type fakeCreator struct {
	created []models.Notification
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *notification)
	return nil
}

type fakeIdempotency struct {
	processed bool
	deleted   bool
}

func (f *fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return f.processed, nil
}

func (f *fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	f.deleted = true
	return nil
}

func testConsumer(repo *fakeCreator, manager *fakeIdempotency) *Consumer {
	return &Consumer{
		repo:        repo,
		idempotency: manager,
		logg: logger.New(logger.Options{
			ServiceName: "notifications-test",
			Level:       logger.ParseLevel("debug"),
			Output:      io.Discard,
		}),
	}
}

func buildMessage(t *testing.T, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return encoded
}

func TestConsumerCreatesConfirmationNotification(t *testing.T) {
	repo := &fakeCreator{}
	consumer := testConsumer(repo, &fakeIdempotency{})

	data := buildMessage(t, map[string]any{
		"bookingId":  uuid.NewString(),
		"supplierId": uuid.NewString(),
		"eventName":  "Okafor Wedding",
	})
	result := consumer.process(context.Background(), string(enums.EventBookingConfirmed), "m1", data)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Type != enums.NotificationBookingConfirmed {
		t.Fatalf("unexpected type %s", created.Type)
	}
	if created.BookingID == nil {
		t.Fatal("expected booking back-reference")
	}
}

func TestConsumerSkipsUnrelatedEvents(t *testing.T) {
	repo := &fakeCreator{}
	consumer := testConsumer(repo, &fakeIdempotency{})

	data := buildMessage(t, map[string]any{"supplierId": uuid.NewString()})
	result := consumer.process(context.Background(), string(enums.EventPackageChanged), "m1", data)
	if !result.ack {
		t.Fatal("expected ack for unhandled event")
	}
	if len(repo.created) != 0 {
		t.Fatal("unhandled event must not create a notification")
	}
}

func TestConsumerIsIdempotent(t *testing.T) {
	repo := &fakeCreator{}
	consumer := testConsumer(repo, &fakeIdempotency{processed: true})

	data := buildMessage(t, map[string]any{
		"bookingId":  uuid.NewString(),
		"supplierId": uuid.NewString(),
	})
	result := consumer.process(context.Background(), string(enums.EventBookingConfirmed), "m1", data)
	if !result.ack {
		t.Fatal("expected ack for duplicate event")
	}
	if len(repo.created) != 0 {
		t.Fatal("duplicate event must not create a notification")
	}
}

func TestConsumerFlagsAnomalousPayments(t *testing.T) {
	repo := &fakeCreator{}
	consumer := testConsumer(repo, &fakeIdempotency{})

	data := buildMessage(t, map[string]any{
		"bookingId":  uuid.NewString(),
		"supplierId": uuid.NewString(),
		"anomalous":  true,
	})
	result := consumer.process(context.Background(), string(enums.EventBookingPaymentRecorded), "m1", data)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	if repo.created[0].Type != enums.NotificationPaymentAnomaly {
		t.Fatalf("expected anomaly notification, got %s", repo.created[0].Type)
	}
}

func TestConsumerNacksOnStoreFailure(t *testing.T) {
	repo := &fakeCreator{err: context.DeadlineExceeded}
	manager := &fakeIdempotency{}
	consumer := testConsumer(repo, manager)

	data := buildMessage(t, map[string]any{
		"bookingId":  uuid.NewString(),
		"supplierId": uuid.NewString(),
	})
	result := consumer.process(context.Background(), string(enums.EventBookingConfirmed), "m1", data)
	if !result.nack {
		t.Fatal("expected nack on store failure")
	}
	if !manager.deleted {
		t.Fatal("expected idempotency key released for retry")
	}
}
