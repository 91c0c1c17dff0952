package termq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/termq/model"
)

// Logger wraps slog.Logger with termq-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithCatalog adds a catalog field to the logger.
func (l *Logger) WithCatalog(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("catalog", name),
	}
}

// lazyString defers rendering a term until a handler emits the record.
type lazyString struct{ s fmt.Stringer }

func (l lazyString) LogValue() slog.Value { return slog.StringValue(l.s.String()) }

// LogSearch logs a search operation. The term is only rendered when the
// record is emitted.
func (l *Logger) LogSearch(ctx context.Context, term fmt.Stringer, total int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"term", lazyString{term},
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"term", lazyString{term},
			"total", total,
			"duration", d,
		)
	}
}

// LogEvaluate logs an evaluation without result assembly.
func (l *Logger) LogEvaluate(ctx context.Context, term fmt.Stringer, size int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluate failed",
			"term", lazyString{term},
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "evaluate completed",
			"term", lazyString{term},
			"size", size,
			"duration", d,
		)
	}
}

// LogBatchSearch logs a SearchAll call.
func (l *Logger) LogBatchSearch(ctx context.Context, count, failed int, d time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch search completed with failures",
			"total", count,
			"failed", failed,
			"duration", d,
		)
	} else {
		l.DebugContext(ctx, "batch search completed",
			"count", count,
			"duration", d,
		)
	}
}

// LogTextRejected logs a text query an index could not parse. The query
// still evaluates, to the empty set.
func (l *Logger) LogTextRejected(ctx context.Context, ref model.IndexRef, query string, err error) {
	l.InfoContext(ctx, "text query rejected",
		"index", ref.String(),
		"query", query,
		"error", err,
	)
}
