package handler

import (
	"net/http"

	"agency_workspace_backend/internal/insights/service"
	"agency_workspace_backend/internal/insights/transport"
	"agency_workspace_backend/internal/tenant"
	"agency_workspace_backend/platform/httpkit"
	"agency_workspace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the insight review workflow.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new insights handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the insights routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/findings", h.ListFindings)
	rg.POST("/analyses", h.IngestAnalysis)
	rg.PATCH("/findings/:id/status", h.SetStatus)
	rg.PATCH("/findings/:id", h.EditContent)
	rg.GET("/verified-opportunities", h.VerifiedOpportunities)
}

func (h *Handler) scope(c *gin.Context) (tenant.Scope, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return tenant.Scope{}, false
	}
	return tenant.FromIdentity(identity), true
}

// ListFindings handles GET /api/v1/insights/findings
func (h *Handler) ListFindings(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.Findings(c.Request.Context(), scope))
}

// IngestAnalysis handles POST /api/v1/insights/analyses
func (h *Handler) IngestAnalysis(c *gin.Context) {
	var req transport.IngestAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	scope, ok := h.scope(c)
	if !ok {
		return
	}

	batch, err := h.svc.IngestAnalysis(c.Request.Context(), scope, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if batch == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.IngestResponse{Created: len(batch), Findings: batch})
}

// SetStatus handles PATCH /api/v1/insights/findings/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	scope, ok := h.scope(c)
	if !ok {
		return
	}

	finding, err := h.svc.SetStatus(c.Request.Context(), scope, id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	if finding == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Finding: finding})
}

// EditContent handles PATCH /api/v1/insights/findings/:id
func (h *Handler) EditContent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.EditContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	scope, ok := h.scope(c)
	if !ok {
		return
	}

	finding, err := h.svc.EditContent(c.Request.Context(), scope, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if finding == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Finding: finding})
}

// VerifiedOpportunities handles GET /api/v1/insights/verified-opportunities
func (h *Handler) VerifiedOpportunities(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.CountVerifiedOpportunities(c.Request.Context(), scope))
}
