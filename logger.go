package vecseg

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/vecseg/segment"
)

// Logger wraps slog.Logger with segment-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogWrite logs a segment write.
func (l *Logger) LogWrite(ctx context.Context, path string, h segment.Header, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment write failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "segment written",
		"path", path,
		"count", h.Count,
		"dimension", h.Dimension,
		"bytes", h.FileSize(),
	)
}

// LogRead logs a read operation. op is one of "header", "all", "at",
// "range" or "many".
func (l *Logger) LogRead(ctx context.Context, op, path string, vectors int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment read failed",
			"op", op,
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "segment read",
		"op", op,
		"path", path,
		"vectors", vectors,
	)
}

// LogVerify logs a verification result.
func (l *Logger) LogVerify(ctx context.Context, path string, r Report, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "segment verification failed",
			"path", path,
			"error", err,
		)
	case r.Trailing > 0:
		l.WarnContext(ctx, "segment has trailing bytes",
			"path", path,
			"expected", r.Expected,
			"size", r.Size,
			"trailing", r.Trailing,
		)
	default:
		l.DebugContext(ctx, "segment verified",
			"path", path,
			"count", r.Header.Count,
			"dimension", r.Header.Dimension,
		)
	}
}

// LogUpload logs a segment upload to a blob store.
func (l *Logger) LogUpload(ctx context.Context, name string, bytes uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment upload failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "segment uploaded",
		"name", name,
		"bytes", bytes,
	)
}
