package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	DLQRepository    dlqRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
}

// Service drains outbox_events into Pub/Sub. Rows that exhaust their
// publish attempts, or resolve to an unknown event, are parked in the
// DLQ table in the same transaction that removes them from the outbox.
type Service struct {
	cfg              *config.Config
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	dlq              dlqRepository
	pubsub           pubSubClient
	registry         registryResolver
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	required := []struct {
		name string
		ok   bool
	}{
		{"config", params.Config != nil},
		{"logger", params.Logger != nil},
		{"database client", params.DB != nil},
		{"pubsub client", params.PubSub != nil},
		{"outbox repository", params.Repository != nil},
		{"dlq repository", params.DLQRepository != nil},
		{"event registry", params.Registry != nil},
	}
	for _, dep := range required {
		if !dep.ok {
			return nil, errors.New(dep.name + " is required")
		}
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return newGCPPublisher(params.PubSub.Publisher(topic))
		}
	}

	s := &Service{
		cfg:              params.Config,
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		dlq:              params.DLQRepository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		publisherFactory: factory,
		batchSize:        params.Config.Outbox.BatchSize,
		maxAttempts:      params.Config.Outbox.MaxAttempts,
		pollInterval:     time.Duration(params.Config.Outbox.PollIntervalMS) * time.Millisecond,
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollMs * time.Millisecond
	}
	return s, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	pings := map[string]func(context.Context) error{
		"database": s.db.Ping,
		"pubsub":   s.pubsub.Ping,
	}
	for name, ping := range pings {
		if err := ping(ctx); err != nil {
			s.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	return nil
}

// Run polls until ctx is canceled. An empty batch sleeps one interval;
// a batch error backs off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		processed, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = growBackoff(backoff, s.pollInterval)
			if err := s.sleep(ctx, jittered(backoff)); err != nil {
				return err
			}
		case processed:
			backoff = s.pollInterval
		default:
			backoff = s.pollInterval
			if err := s.sleep(ctx, jittered(s.pollInterval)); err != nil {
				return err
			}
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		if err := s.dispatch(ctx, event); err != nil {
			return true, err
		}
	}
	return true, nil
}

// dispatch publishes one event. A returned error aborts the batch; events
// that fail in expected ways are marked or parked and return nil.
func (s *Service) dispatch(ctx context.Context, event models.OutboxEvent) error {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return s.parkInDLQ(ctx, event, err, "", nil)
	}

	fields := s.eventFields(event, resolved.Envelope, resolved.Descriptor.Topic)
	err = s.publishResolved(ctx, event, resolved)
	if err == nil {
		if markErr := s.repo.MarkPublished(event.ID); markErr != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, markErr)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(err, &nonRetry) {
		return s.parkInDLQ(ctx, event, err, resolved.Descriptor.Topic, fields)
	}

	nextAttempt := event.AttemptCount + 1
	fields["attempt_count"] = nextAttempt
	if nextAttempt >= s.maxAttempts {
		fields["terminal_reason"] = "max_attempts"
		terminalErr := fmt.Errorf("max publish attempts reached: %w", err)
		return s.parkInDLQ(ctx, event, terminalErr, resolved.Descriptor.Topic, fields)
	}

	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", err.Error())
	s.logg.Warn(logCtx, "outbox publish failed")
	if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
	}
	return nil
}

func (s *Service) parkInDLQ(ctx context.Context, event models.OutboxEvent, cause error, topic string, fields map[string]any) error {
	if fields == nil {
		fields = s.eventFields(event, outbox.PayloadEnvelope{}, topic)
	}
	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", cause.Error())
	s.logg.Warn(logCtx, "outbox event will not be retried")

	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.dlq.InsertTx(tx, entry); err != nil {
			return fmt.Errorf("insert dlq %s: %w", event.ID, err)
		}
		if err := s.repo.Delete(tx, event.ID); err != nil {
			return fmt.Errorf("delete outbox row %s: %w", event.ID, err)
		}
		return nil
	})
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func growBackoff(current, base time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	if next := current * 2; next < maxBackoff {
		return next
	}
	return maxBackoff
}

func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
