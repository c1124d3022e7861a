package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/redis"
)

// processedScope namespaces keys per consumer so the dashboard, notifications
// and analytics workers never shadow each other's delivery state.
const processedScope = "evt:processed:%s"

// Manager deduplicates Pub/Sub deliveries per consumer. The first
// CheckAndMarkProcessed for an event wins via SETNX; replays within the TTL
// window report the event as already handled. Once the TTL lapses a redelivery
// would be processed again, so consumer handlers stay idempotent at the
// database level too.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a delivery guard whose marks expire after ttl.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed reports whether the event was already handled by the
// named consumer, marking it as handled when it was not.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return false, err
	}
	stored, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !stored, nil
}

// Delete clears the processed mark, letting the next delivery through. Handlers
// call it after a failure so the message can be retried before the TTL expires.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf(processedScope, consumer), eventID.String()), nil
}
