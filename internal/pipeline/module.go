// Package pipeline provides the opportunity pipeline domain module: lead
// intake, the stage machine, and the conversion ledger.
package pipeline

import (
	apphttp "agency_workspace_backend/internal/http"
	"agency_workspace_backend/internal/pipeline/handler"
	"agency_workspace_backend/internal/pipeline/repository"
	"agency_workspace_backend/internal/pipeline/service"
	"agency_workspace_backend/internal/store"
	"agency_workspace_backend/platform/config"
	"agency_workspace_backend/platform/validator"

	"agency_workspace_backend/internal/events"
)

// Module represents the pipeline domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
	Repo    *repository.Repository
}

// NewModule creates a new pipeline module with all dependencies wired
func NewModule(st *store.Store, val *validator.Validator, bus events.Bus, reminders service.ReminderScheduler, intake config.IntakeConfig) *Module {
	repo := repository.New(st)
	svc := service.New(repo, bus, reminders, intake)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
		Repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "pipeline"
}

// RegisterRoutes registers the module's routes under /api/v1/pipeline
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	pipeline := ctx.Protected.Group("/pipeline")
	m.handler.RegisterRoutes(pipeline)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
