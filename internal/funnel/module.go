// Package funnel provides the KPI and funnel aggregation module. It owns
// no persisted state; everything is derived from the pipeline and
// insights collections at read time.
package funnel

import (
	"agency_workspace_backend/internal/funnel/handler"
	"agency_workspace_backend/internal/funnel/service"
	apphttp "agency_workspace_backend/internal/http"
)

// Module represents the funnel aggregation module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new funnel module over the pipeline and insights
// read surfaces.
func NewModule(pipeline service.PipelineReader, findings service.FindingsReader) *Module {
	svc := service.New(pipeline, findings)
	h := handler.New(svc)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "funnel"
}

// RegisterRoutes registers the module's routes under /api/v1/funnel
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	funnel := ctx.Protected.Group("/funnel")
	m.handler.RegisterRoutes(funnel)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
