// Package logger provides structured logging for the reverse proxy.
//
// It wraps slog with JSON output, request-scoped fields, and a small set of
// domain-specific log helpers for the forwarding path.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
}

// New creates a new structured logger instance.
func New(serviceName string) *Logger {
	level := getLogLevel()

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Only add source in debug mode
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	logger := slog.New(handler).With(
		slog.String("service", serviceName),
	)

	return &Logger{Logger: logger}
}

// WithContext returns a logger with the inbound request ID attached, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return &Logger{Logger: l.With(slog.String("request_id", reqID))}
	}
	return l
}

// WithFields returns a logger with additional structured fields.
func (l *Logger) WithFields(fields ...slog.Attr) *Logger {
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return &Logger{Logger: l.With(args...)}
}

// WithComponent returns a logger with a component field.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With(slog.String("component", component))}
}

// LogRequest logs an inbound request's outcome in a structured format.
func (l *Logger) LogRequest(ctx context.Context, route, method, path string, statusCode int, duration int64) {
	l.WithContext(ctx).Info("request forwarded",
		slog.String("route", route),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status_code", statusCode),
		slog.Int64("duration_ms", duration),
	)
}

// LogError logs error information with additional context.
func (l *Logger) LogError(ctx context.Context, err error, msg string, fields ...slog.Attr) {
	logger := l.WithContext(ctx)

	args := []any{
		slog.String("error", err.Error()),
	}

	for _, field := range fields {
		args = append(args, field)
	}

	logger.Error(msg, args...)
}

// Helper functions

func getLogLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "INFO", "info":
		return slog.LevelInfo
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Common log fields for consistent logging
var (
	FieldLatency = func(ms int64) slog.Attr { return slog.Int64("latency_ms", ms) }
	FieldStatus  = func(status int) slog.Attr { return slog.Int("status", status) }
	FieldMethod  = func(method string) slog.Attr { return slog.String("method", method) }
	FieldPath    = func(path string) slog.Attr { return slog.String("path", path) }
	FieldRoute   = func(route string) slog.Attr { return slog.String("route", route) }
)
