package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/velora-market/velora-backend/pkg/env"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
}

// Logger wraps zerolog and carries per-request fields through the context.
// Handlers enrich the context with WithField and the terminal Info/Warn/Error
// calls pick the enriched entry back up.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

// New builds a logger writing JSON to stdout unless LOG_FORMAT=console.
func New(opts Options) *Logger {
	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.
		New(writerFor(opts)).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(level)

	return &Logger{base: &base, warnStack: opts.WarnStack}
}

func writerFor(opts Options) io.Writer {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if env.Get("LOG_FORMAT", "json") == "console" {
		return zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}
	return output
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if e, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return e
		}
	}
	return l.base
}

// enrich stores a copy of the derived logger so sibling goroutines sharing
// the parent context never see each other's fields.
func enrich(ctx context.Context, derived zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &derived)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return enrich(ctx, l.entry(ctx).With().Interface(key, value).Logger())
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.entry(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	return enrich(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

func (l *Logger) WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return l.WithField(ctx, "supplier_id", supplierID)
}

func (l *Logger) WithBookingID(ctx context.Context, bookingID string) context.Context {
	return l.WithField(ctx, "booking_id", bookingID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.entry(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.entry(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
