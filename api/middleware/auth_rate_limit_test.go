package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRateStore) RateLimitKey(scope string) string {
	return "vl:ratelimit:" + scope
}

func loginRequest(email, remoteAddr string) *http.Request {
	body := `{"email":"` + email + `","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	return req
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body must still be readable downstream.
		var payload struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body downstream: %v", err)
		}
		if payload.Email != "tester@example.com" {
			t.Fatalf("unexpected email: %s", payload.Email)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "1.2.3.4:5678"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimitEmailLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		// Mixed case and whitespace normalize to the same counter.
		handler.ServeHTTP(rec, loginRequest("Blocked@Example.com", "1.2.3.4:5678"))

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: expected success before limit, got %d", i, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
}

func TestAuthRateLimitIPLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("a@example.com", "5.6.7.8:1234"))
	if first.Code != http.StatusOK {
		t.Fatalf("expected success, got %d", first.Code)
	}

	// Different email, same IP: still blocked.
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("b@example.com", "5.6.7.8:9999"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestAuthRateLimitUsesForwardedFor(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := loginRequest("c@example.com", "10.0.0.1:1111")
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 on second request, got %d", rec.Code)
		}
	}

	key := store.RateLimitKey("login:ip:203.0.113.9")
	if store.counts[key] != 2 {
		t.Fatalf("expected counter on forwarded ip, got %v", store.counts)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", 0, 5, 5)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("free@example.com", "1.1.1.1:80"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy should not touch the store: %v", store.counts)
	}
}
