package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/velora-market/velora-backend/api/responses"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	pkgredis "github.com/velora-market/velora-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

var idempotencyRules = []idempotencyRule{
	// 24h TTL endpoints
	{method: http.MethodPost, matcher: matchExact("/api/v1/supplier/packages"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/supplier/availability"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/notifications/", "/read"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/supplier/notifications/read-all"), ttl: defaultIdempotencyTTL},
	// 7d TTL endpoints: booking transitions are the money path
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/bookings/", "/confirm"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/bookings/", "/reject"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/bookings/", "/start"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/bookings/", "/complete"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/supplier/bookings/", "/cancel"), ttl: criticalIdempotencyTTL},
}

// idempotencyRecord is the cached outcome of a guarded request. The request
// hash pins the stored response to the exact body that produced it.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a guarded mutation arrives
// twice with the same Idempotency-Key and body. Routes outside the rule table
// pass through untouched.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guard := &idempotencyGuard{store: store, logg: logg, next: next}
		return http.HandlerFunc(guard.serve)
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
	next  http.Handler
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request) {
	ttl, guarded := routeTTL(r.Method, routePattern(r))
	if !guarded || g.store == nil {
		g.next.ServeHTTP(w, r)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	requestHash := hashBody(body)
	storeKey := g.store.IdempotencyKey(buildScope(r), key)

	replayed, err := g.tryReplay(w, r, storeKey, requestHash)
	if err != nil {
		responses.WriteError(r.Context(), g.logg, w, err)
		return
	}
	if replayed {
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	g.next.ServeHTTP(capture, r)
	g.persist(r.Context(), storeKey, requestHash, capture, ttl)
}

// tryReplay writes the stored response if one exists for the key. A stored
// record with a different request hash is a key-reuse error.
func (g *idempotencyGuard) tryReplay(w http.ResponseWriter, r *http.Request, storeKey, requestHash string) (bool, error) {
	stored, err := g.store.Get(r.Context(), storeKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if stored == "" {
		return false, nil
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	if record.RequestHash != requestHash {
		return false, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	}

	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
	return true, nil
}

func (g *idempotencyGuard) persist(ctx context.Context, storeKey, requestHash string, capture *responseCapture, ttl time.Duration) {
	record := idempotencyRecord{
		Status:      capture.statusOr(http.StatusOK),
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: requestHash,
	}
	if ct := capture.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		g.logFailure(ctx, "marshal idempotency record", err)
		return
	}
	if _, err := g.store.SetNX(ctx, storeKey, string(payload), ttl); err != nil {
		g.logFailure(ctx, "persist idempotency record", err)
	}
}

func (g *idempotencyGuard) logFailure(ctx context.Context, msg string, err error) {
	if g.logg == nil || err == nil {
		return
	}
	g.logg.Error(ctx, msg, err)
}

// buildScope ties the stored response to the caller and route so the same
// client-chosen key cannot collide across users or endpoints.
func buildScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		SupplierIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		// Mid-tree middleware sees a wildcard pattern; the concrete
		// path is what the rules are written against.
		if pattern := ctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	pattern = strings.TrimSuffix(pattern, "/*")
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOr(fallback int) int {
	if r.status == 0 {
		return fallback
	}
	return r.status
}
