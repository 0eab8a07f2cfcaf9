package handler

import (
	"agency_workspace_backend/internal/funnel/service"
	"agency_workspace_backend/internal/tenant"
	"agency_workspace_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the funnel aggregations.
type Handler struct {
	svc *service.Service
}

// New creates a new funnel handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the funnel routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/overview", h.Overview)
	rg.GET("/stages", h.Stages)
}

// Overview handles GET /api/v1/funnel/overview
func (h *Handler) Overview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	scope := tenant.FromIdentity(identity)
	httpkit.OK(c, h.svc.Overview(c.Request.Context(), scope))
}

// Stages handles GET /api/v1/funnel/stages
func (h *Handler) Stages(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	scope := tenant.FromIdentity(identity)
	httpkit.OK(c, h.svc.Funnel(c.Request.Context(), scope))
}
