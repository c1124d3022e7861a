package paymentwebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/velora-market/velora-backend/pkg/redis"
)

// IdempotencyGuard deduplicates processor event deliveries by event id. Keys
// expire after the TTL so a replayed delivery months later is treated as new.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

// NewIdempotencyGuard builds a guard scoped to one webhook source.
func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if strings.TrimSpace(scope) == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark records the event id and reports whether it was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	fresh, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !fresh, nil
}

// Delete clears the mark so a failed delivery can be retried by the sender.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}
