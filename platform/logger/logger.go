// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithAgency returns a logger scoped to a tenant agency.
func (l *Logger) WithAgency(agencyID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("agency_id", agencyID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// WorkflowEvent logs a pipeline or review workflow state change.
func (l *Logger) WorkflowEvent(event, agencyID, entityID string, attrs ...slog.Attr) {
	base := []slog.Attr{
		slog.String("event", event),
		slog.String("agency_id", agencyID),
		slog.String("entity_id", entityID),
	}
	l.LogAttrs(context.Background(), slog.LevelInfo, "workflow_event", append(base, attrs...)...)
}

// StoreError logs a local-first store failure (cache or backend source).
func (l *Logger) StoreError(operation, key string, err error) {
	l.Error("store_error",
		slog.String("operation", operation),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// StoreDegraded logs a read that fell back to the default value because
// neither the cache nor the backend source could serve it.
func (l *Logger) StoreDegraded(key string, reason string) {
	l.Warn("store_degraded",
		slog.String("key", key),
		slog.String("reason", reason),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
