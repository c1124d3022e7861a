package middleware

import (
	"net/http"
	"time"

	"github.com/velora-market/velora-backend/pkg/logger"
)

// Logging emits request.start and request.complete lines with method, path,
// status, and latency. Without a logger it is a no-op wrapper.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			logg.Info(ctx, "request.start")

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.statusOr(http.StatusOK),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) statusOr(fallback int) int {
	if r.status == 0 {
		return fallback
	}
	return r.status
}
