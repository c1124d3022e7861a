package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return "", redislib.Nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func (m *memoryStore) tokenFor(accessID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[m.AccessSessionKey(accessID)]
	return val, ok
}

func newTestManager(store *memoryStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := "access-123"
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored, _ := store.tokenFor(accessID); stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}

	if _, _, err := manager.Rotate(ctx, accessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.tokenFor(accessID); exists {
		t.Fatal("old access key left behind")
	}
	if stored, _ := store.tokenFor(newAccessID); stored != newToken {
		t.Fatalf("expected new token stored, got %q", stored)
	}

	// The rotated-away token must not work a second time.
	if _, _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected replayed rotation to fail, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := "access-456"
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	has, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !has {
		t.Fatal("expected active session")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	has, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if has {
		t.Fatal("expected session to be gone")
	}
}
