// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"agency_workspace_backend/internal/events"
	"agency_workspace_backend/platform/config"
	"agency_workspace_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MultiHealth combines several health checkers into one. Ping reports
// the first failing dependency; nil checkers are skipped so optional
// backends (e.g. a cache-only deployment without a database) compose
// without special cases.
func MultiHealth(checks ...HealthChecker) HealthChecker {
	return multiHealth(checks)
}

type multiHealth []HealthChecker

func (m multiHealth) Ping(ctx context.Context) error {
	for _, check := range m {
		if check == nil {
			continue
		}
		if err := check.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (snapshot cache ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
