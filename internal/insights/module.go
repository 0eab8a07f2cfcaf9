// Package insights provides the insight review domain module: AI-surfaced
// account findings and their review lifecycle.
package insights

import (
	"agency_workspace_backend/internal/events"
	apphttp "agency_workspace_backend/internal/http"
	"agency_workspace_backend/internal/insights/handler"
	"agency_workspace_backend/internal/insights/repository"
	"agency_workspace_backend/internal/insights/service"
	"agency_workspace_backend/internal/store"
	"agency_workspace_backend/platform/validator"
)

// Module represents the insights domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
	Repo    *repository.Repository
}

// NewModule creates a new insights module with all dependencies wired
func NewModule(st *store.Store, val *validator.Validator, bus events.Bus) *Module {
	repo := repository.New(st)
	svc := service.New(repo, bus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
		Repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "insights"
}

// RegisterRoutes registers the module's routes under /api/v1/insights
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	insights := ctx.Protected.Group("/insights")
	m.handler.RegisterRoutes(insights)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
