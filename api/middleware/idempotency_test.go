package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
)

type fakeIdempotencyStore struct {
	data map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("vl:idempotency:%s:%s", scope, id)
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func confirmRequest(body string) *http.Request {
	path := "/api/v1/supplier/bookings/0b5fe1a0-0000-0000-0000-000000000001/confirm"
	return requestWithPattern(http.MethodPost, path, path, strings.NewReader(body))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"booking confirm", http.MethodPost, "/api/v1/supplier/bookings/123/confirm", criticalIdempotencyTTL, true},
		{"booking cancel", http.MethodPost, "/api/v1/supplier/bookings/123/cancel", criticalIdempotencyTTL, true},
		{"create package", http.MethodPost, "/api/v1/supplier/packages", defaultIdempotencyTTL, true},
		{"block date", http.MethodPost, "/api/v1/supplier/availability", defaultIdempotencyTTL, true},
		{"mark notification read", http.MethodPost, "/api/v1/supplier/notifications/42/read", defaultIdempotencyTTL, true},
		{"trailing wildcard stripped", http.MethodPost, "/api/v1/supplier/availability/*", defaultIdempotencyTTL, true},
		{"login not idempotent", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"get never matched", http.MethodGet, "/api/v1/supplier/packages", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	mw := Idempotency(newFakeIdempotencyStore(), nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, confirmRequest(`{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if handlerCalled {
		t.Fatal("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareSkipsUnmatchedRoutes(t *testing.T) {
	mw := Idempotency(newFakeIdempotencyStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// No Idempotency-Key header, but the route is not guarded.
	req := requestWithPattern(http.MethodGet, "/api/v1/supplier/bookings", "/api/v1/supplier/bookings", nil)
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(newFakeIdempotencyStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"data":{"status":"confirmed"}}`))
	})

	first := confirmRequest(`{"note":"see you saturday"}`)
	first.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, first)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", rec.Code)
	}

	replay := confirmRequest(`{"note":"see you saturday"}`)
	replay.Header.Set("Idempotency-Key", "abc")
	replayRec := httptest.NewRecorder()
	mw(handler).ServeHTTP(replayRec, replay)

	if replayRec.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", replayRec.Code)
	}
	if replayRec.Header().Get("Content-Type") != "application/json" {
		t.Fatal("expected content-type header preserved")
	}
	if strings.TrimSpace(replayRec.Body.String()) != `{"data":{"status":"confirmed"}}` {
		t.Fatalf("expected stored body, got %s", replayRec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	mw := Idempotency(newFakeIdempotencyStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := confirmRequest(`{"note":"original"}`)
	first.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), first)

	replay := confirmRequest(`{"note":"changed"}`)
	replay.Header.Set("Idempotency-Key", "xyz")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}
