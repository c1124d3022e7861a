package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/velora-market/velora-backend/api/responses"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy defines the throttling parameters for a traffic surface.
// A zero window or all-zero limits disables the policy.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit enforces per-IP and per-email counters for auth endpoints.
// Email addresses are hashed before they reach Redis or the logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		lim := &authLimiter{policy: policy, store: store, logg: logg}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if done := lim.checkIP(ctx, w, r); done {
				return
			}
			if done := lim.checkEmail(ctx, w, r); done {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authLimiter struct {
	policy AuthRateLimitPolicy
	store  rateLimiterStore
	logg   *logger.Logger
}

func (l *authLimiter) checkIP(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	if l.policy.ipLimit <= 0 {
		return false
	}
	ip := clientIP(r)
	if ip == "" {
		return false
	}
	key := l.store.RateLimitKey(fmt.Sprintf("%s:ip:%s", l.policy.name, ip))
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count <= int64(l.policy.ipLimit) {
		return false
	}
	l.block(ctx, w, map[string]any{"scope": "ip", "ip": ip, "attempts": count, "limit": l.policy.ipLimit})
	return true
}

func (l *authLimiter) checkEmail(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	if l.policy.emailLimit <= 0 {
		return false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return true
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	email := normalizeEmail(extractEmail(body))
	if email == "" {
		return false
	}
	hash := hashValue(email)
	key := l.store.RateLimitKey(fmt.Sprintf("%s:email:%s", l.policy.name, hash))
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count <= int64(l.policy.emailLimit) {
		return false
	}
	l.block(ctx, w, map[string]any{"scope": "email", "email_hash": hash, "attempts": count, "limit": l.policy.emailLimit})
	return true
}

func (l *authLimiter) block(ctx context.Context, w http.ResponseWriter, fields map[string]any) {
	if l.logg != nil {
		fields["policy"] = l.policy.name
		fields["window_seconds"] = int(l.policy.window.Seconds())
		l.logg.Warn(l.logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
