package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"
	"github.com/velora-market/velora-backend/pkg/outbox/registry"
)

func seedEvent(t *testing.T, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	t.Helper()
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   uuid.New(),
		Payload:       envelope,
		AttemptCount:  attempts,
		CreatedAt:     time.Now().UTC(),
	}
}

func resolvedBooking(topic string, payload any) *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         topic,
			AggregateType: enums.AggregateBooking,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: payload,
	}
}

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	events := []models.OutboxEvent{
		seedEvent(t, enums.EventBookingConfirmed, 0),
		seedEvent(t, enums.EventBookingConfirmed, 0),
	}
	repo := &stubOutboxRepo{events: events}
	pub := &stubPublisher{
		results: []publishResult{
			stubPublishResult{err: errors.New("transient")},
			stubPublishResult{},
		},
	}
	resolver := &stubResolver{resolved: resolvedBooking("bookings-topic", &payloads.BookingDecisionEvent{})}
	service := newTestService(t, repo, pub, resolver, &stubDLQRepo{}, nil)

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	// The transient failure marks the first row and keeps draining.
	require.Len(t, repo.failed, 1)
	require.Len(t, repo.published, 1)
	assert.Equal(t, events[0].ID, repo.failed[0])
	assert.Equal(t, events[1].ID, repo.published[0])
}

func TestServiceProcessBatchParksUnresolvableEvent(t *testing.T) {
	event := seedEvent(t, enums.EventBookingConfirmed, 0)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{event}}
	resolver := &stubResolver{err: registry.NewNonRetryableError(errors.New("unknown event type"))}
	dlqRepo := &stubDLQRepo{}
	service := newTestService(t, repo, &stubPublisher{}, resolver, dlqRepo, nil)

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, dlqRepo.entries, 1)
	entry := dlqRepo.entries[0]
	assert.Equal(t, event.ID, entry.EventID)
	assert.Equal(t, []byte(event.Payload), []byte(entry.Payload))
	require.NotNil(t, entry.ErrorMessage)
	assert.NotEmpty(t, *entry.ErrorMessage)
	// Parking removes the outbox row in the same transaction.
	assert.Equal(t, []uuid.UUID{event.ID}, repo.deleted)
}

func TestServiceProcessBatchParksOnMaxAttempts(t *testing.T) {
	event := seedEvent(t, enums.EventBookingCancelled, 1)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{
		results: []publishResult{stubPublishResult{err: errors.New("transient")}},
	}
	resolver := &stubResolver{resolved: resolvedBooking("bookings-topic", &payloads.BookingCancelledEvent{})}
	dlqRepo := &stubDLQRepo{}
	service := newTestService(t, repo, pub, resolver, dlqRepo, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	processed, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, dlqRepo.entries, 1)
	assert.Empty(t, repo.failed, "terminal row must not be marked failed")
	assert.Equal(t, []uuid.UUID{event.ID}, repo.deleted)
}

func TestPublishResolvedSetsMessageAttributes(t *testing.T) {
	pub := &stubPublisher{results: []publishResult{stubPublishResult{}}}
	event := seedEvent(t, enums.EventBookingCompleted, 0)
	resolved := resolvedBooking("bookings-topic", &payloads.BookingProgressEvent{})
	resolved.Envelope.EventID = "evt-123"
	service := newTestService(t, &stubOutboxRepo{}, pub, &stubResolver{resolved: resolved}, &stubDLQRepo{}, nil)

	require.NoError(t, service.publishResolved(context.Background(), event, resolved))

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, "evt-123", msg.Attributes["event_id"])
	assert.Equal(t, string(enums.EventBookingCompleted), msg.Attributes["event_type"])
	assert.Equal(t, string(enums.AggregateBooking), msg.Attributes["aggregate_type"])
	assert.Equal(t, event.AggregateID.String(), msg.Attributes["aggregate_id"])
	assert.Equal(t, []byte(event.Payload), msg.Data)
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, resolver registryResolver, dlq dlqRepository, outboxCfg *config.OutboxConfig) *Service {
	t.Helper()
	if outboxCfg == nil {
		outboxCfg = &config.OutboxConfig{
			BatchSize:      2,
			PollIntervalMS: 100,
			MaxAttempts:    5,
		}
	}
	service, err := NewService(ServiceParams{
		Config: &config.Config{Outbox: *outboxCfg},
		Logger: logger.New(logger.Options{
			ServiceName: "outbox-publisher-test",
			Output:      io.Discard,
		}),
		DB:               stubDB{},
		PubSub:           stubPubSubClient{},
		Repository:       repo,
		DLQRepository:    dlq,
		Registry:         resolver,
		PublisherFactory: func(string) publisher { return pub },
	})
	require.NoError(t, err)
	return service
}

type stubOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	deleted   []uuid.UUID
}

func (s *stubOutboxRepo) FetchUnpublished(int) ([]models.OutboxEvent, error) {
	return s.events, nil
}

func (s *stubOutboxRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutboxRepo) MarkFailed(id uuid.UUID, _ error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubOutboxRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubDLQRepo struct {
	entries []models.OutboxDLQ
}

func (s *stubDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubDB struct{}

func (stubDB) Ping(context.Context) error { return nil }

func (stubDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error { return fn(nil) }

type stubPubSubClient struct{}

func (stubPubSubClient) Ping(context.Context) error { return nil }

func (stubPubSubClient) Publisher(string) *gcppubsub.Publisher { return nil }

type stubResolver struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (s *stubResolver) Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resolved, nil
}

type stubPublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (s *stubPublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	if len(s.results) == 0 {
		return nil
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result
}

type stubPublishResult struct {
	err error
}

func (s stubPublishResult) Get(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "server-id", nil
}
