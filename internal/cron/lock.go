package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// defaultLockTTL outlives any sane cycle so a crashed worker cannot wedge the
// schedule for more than one interval.
const defaultLockTTL = 2 * time.Hour

// Lock coordinates exclusive cron runs across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock implements Lock with SETNX plus a TTL. Each acquisition writes a
// fresh owner token so a replica can never release a lock it lost to expiry.
type RedisLock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock on the given key.
func NewRedisLock(client lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if acquired {
		l.owner = token
	}
	return acquired, nil
}

// Release frees the lock only while this instance still owns it. Releasing a
// lock that expired and was re-acquired elsewhere is a no-op.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	held, err := l.stillHeld(ctx)
	if err != nil {
		return err
	}
	if !held {
		l.owner = ""
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

func (l *RedisLock) stillHeld(ctx context.Context) (bool, error) {
	value, err := l.client.Get(ctx, l.key)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read lock owner: %w", err)
	}
	return value == l.owner, nil
}
