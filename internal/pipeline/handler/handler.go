package handler

import (
	"net/http"

	"agency_workspace_backend/internal/pipeline/service"
	"agency_workspace_backend/internal/pipeline/transport"
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

// Handler handles HTTP requests for the pipeline workflow.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pipeline handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the pipeline routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/inquiries", h.CreateInquiry)
	rg.GET("/inquiries", h.ListInquiries)

	rg.GET("/opportunities", h.ListOpportunities)
	rg.POST("/opportunities/promote", h.Promote)
	rg.POST("/opportunities/:id/transition", h.Transition)
	rg.POST("/opportunities/:id/move", h.Move)
	rg.POST("/opportunities/:id/close", h.Close)
	rg.PATCH("/opportunities/:id", h.Update)
	rg.PUT("/opportunities/:id/follow-up", h.SetFollowUp)

	rg.GET("/interactions", h.ListInteractions)
	rg.POST("/interactions", h.AddInteraction)

	rg.GET("/conversions", h.ListConversions)
	rg.GET("/integrity", h.Integrity)
}

func (h *Handler) scope(c *gin.Context) (tenant.Scope, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return tenant.Scope{}, false
	}
	return tenant.FromIdentity(identity), true
}

// CreateInquiry handles POST /api/v1/pipeline/inquiries
func (h *Handler) CreateInquiry(c *gin.Context) {
	var req transport.CreateInquiryRequest
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

	inq, err := h.svc.CreateInquiry(c.Request.Context(), scope, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if inq == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.JSON(c, http.StatusCreated, inq)
}

// ListInquiries handles GET /api/v1/pipeline/inquiries?view=unassigned|hot|referral
func (h *Handler) ListInquiries(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	view := c.DefaultQuery("view", service.ViewUnassigned)
	switch view {
	case service.ViewUnassigned, service.ViewHot, service.ViewReferral:
	default:
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "unknown view")
		return
	}

	httpkit.OK(c, h.svc.InquiryFeed(c.Request.Context(), scope, view))
}

// ListOpportunities handles GET /api/v1/pipeline/opportunities
func (h *Handler) ListOpportunities(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.Opportunities(c.Request.Context(), scope))
}

// Promote handles POST /api/v1/pipeline/opportunities/promote
func (h *Handler) Promote(c *gin.Context) {
	var req transport.PromoteRequest
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

	opp, err := h.svc.Promote(c.Request.Context(), scope, req.InquiryID)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// Transition handles POST /api/v1/pipeline/opportunities/:id/transition
func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TransitionRequest
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

	opp, err := h.svc.Transition(c.Request.Context(), scope, id, req.Stage)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// Move handles POST /api/v1/pipeline/opportunities/:id/move
func (h *Handler) Move(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.MoveRequest
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

	opp, err := h.svc.Move(c.Request.Context(), scope, id, req.To)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// Close handles POST /api/v1/pipeline/opportunities/:id/close
func (h *Handler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CloseRequest
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

	opp, err := h.svc.Close(c.Request.Context(), scope, id, req.Outcome)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// Update handles PATCH /api/v1/pipeline/opportunities/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateOpportunityRequest
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

	opp, err := h.svc.UpdateDetails(c.Request.Context(), scope, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// SetFollowUp handles PUT /api/v1/pipeline/opportunities/:id/follow-up
func (h *Handler) SetFollowUp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.FollowUpRequest
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

	opp, err := h.svc.SetFollowUp(c.Request.Context(), scope, id, req.At)
	if httpkit.HandleError(c, err) {
		return
	}
	if opp == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.OK(c, transport.ChangeResponse{Changed: true, Opportunity: opp})
}

// ListInteractions handles GET /api/v1/pipeline/interactions
func (h *Handler) ListInteractions(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.Interactions(c.Request.Context(), scope))
}

// AddInteraction handles POST /api/v1/pipeline/interactions
func (h *Handler) AddInteraction(c *gin.Context) {
	var req transport.AddInteractionRequest
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

	in, err := h.svc.AddInteraction(c.Request.Context(), scope, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if in == nil {
		httpkit.NoChange(c)
		return
	}
	httpkit.JSON(c, http.StatusCreated, in)
}

// ListConversions handles GET /api/v1/pipeline/conversions
func (h *Handler) ListConversions(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.svc.Conversions(c.Request.Context(), scope))
}

// Integrity handles GET /api/v1/pipeline/integrity
func (h *Handler) Integrity(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	dups := h.svc.Integrity(c.Request.Context(), scope)
	if dups == nil {
		dups = []uuid.UUID{}
	}
	httpkit.OK(c, transport.IntegrityResponse{DuplicateInquiryIDs: dups})
}
