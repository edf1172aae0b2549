package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/application/service"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/lifecycle"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/signoff"
)

// Response is the standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	engagementService service.EngagementService
	workflowService   service.WorkflowService
	signoffService    service.SignoffService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engagementService service.EngagementService,
	workflowService service.WorkflowService,
	signoffService service.SignoffService,
	logger Logger,
) *Handlers {
	return &Handlers{
		engagementService: engagementService,
		workflowService:   workflowService,
		signoffService:    signoffService,
		logger:            logger,
	}
}

const userContextKey = "acting_user"

// identityMiddleware resolves the acting user from request headers. There is
// no session layer here; an upstream gateway is trusted to have
// authenticated the caller.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")
		if userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "X-User-ID and X-User-Role headers are required",
			})
			return
		}
		c.Set(userContextKey, entity.User{ID: userID, Role: role})
		c.Next()
	}
}

func actingUser(c *gin.Context) entity.User {
	user, _ := c.Get(userContextKey)
	u, _ := user.(entity.User)
	return u
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps service and port errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrAuthorizationDenied):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrSignoffOutOfOrder),
		errors.Is(err, service.ErrSelfReview),
		errors.Is(err, service.ErrWorkpaperLocked):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, lifecycle.ErrInvalidState),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"status": "healthy"},
	})
}

// CreateEngagementRequest is the request body for creating an engagement
type CreateEngagementRequest struct {
	ClientName    string `json:"client_name" binding:"required"`
	Title         string `json:"title"`
	PeriodEnd     string `json:"period_end"`
	PartnerUserID string `json:"partner_user_id" binding:"required"`
	ManagerUserID string `json:"manager_user_id"`
}

// CreateEngagement handles POST /api/engagements
func (h *Handlers) CreateEngagement(c *gin.Context) {
	var req CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	eng, err := h.engagementService.Create(c.Request.Context(), service.CreateEngagementParams{
		ClientName:    req.ClientName,
		Title:         req.Title,
		PeriodEnd:     req.PeriodEnd,
		PartnerUserID: req.PartnerUserID,
		ManagerUserID: req.ManagerUserID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: eng})
}

// ListEngagements handles GET /api/engagements
func (h *Handlers) ListEngagements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	engs, err := h.engagementService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: engs})
}

// GetEngagement handles GET /api/engagements/:id
func (h *Handlers) GetEngagement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	eng, err := h.engagementService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: eng})
}

// UpdateChecklist handles PUT /api/engagements/:id/checklist
func (h *Handlers) UpdateChecklist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var checklist entity.Checklist
	if err := c.ShouldBindJSON(&checklist); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.engagementService.UpdateChecklist(c.Request.Context(), id, checklist); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"id": id}})
}

// AvailableActions handles GET /api/engagements/:id/actions
func (h *Handlers) AvailableActions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actions, err := h.workflowService.AvailableActions(c.Request.Context(), id, actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"actions": actions}})
}

// BlockingRequirements handles GET /api/engagements/:id/actions/:action/requirements
func (h *Handlers) BlockingRequirements(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	action := lifecycle.Action(c.Param("action"))

	reqs, err := h.workflowService.BlockingRequirements(c.Request.Context(), id, action, actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"requirements": reqs}})
}

// PerformActionRequest is the request body for performing a lifecycle action
type PerformActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// PerformAction handles POST /api/engagements/:id/actions. A denied
// transition is a successful HTTP exchange carrying an unsuccessful result,
// not a transport error.
func (h *Handlers) PerformAction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PerformActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	result, err := h.workflowService.PerformAction(c.Request.Context(), id, lifecycle.Action(req.Action), actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		switch result.Code {
		case lifecycle.DenialAuthorization:
			status = http.StatusForbidden
		case lifecycle.DenialConflict:
			status = http.StatusConflict
		default:
			status = http.StatusUnprocessableEntity
		}
	}

	c.JSON(status, Response{Success: result.Success, Data: result, Error: result.Error})
}

// TransitionHistory handles GET /api/engagements/:id/history
func (h *Handlers) TransitionHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entries, err := h.workflowService.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"history": entries}})
}

// ListWorkpapers handles GET /api/engagements/:id/workpapers
func (h *Handlers) ListWorkpapers(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	papers, err := h.signoffService.ListWorkpapers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: papers})
}

// CreateWorkpaperRequest is the request body for creating a workpaper
type CreateWorkpaperRequest struct {
	EngagementID int64  `json:"engagement_id" binding:"required"`
	Reference    string `json:"reference"`
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content"`
}

// CreateWorkpaper handles POST /api/workpapers
func (h *Handlers) CreateWorkpaper(c *gin.Context) {
	var req CreateWorkpaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	wp, err := h.signoffService.CreateWorkpaper(c.Request.Context(), req.EngagementID, req.Reference, req.Title, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: wp})
}

// GetWorkpaper handles GET /api/workpapers/:id
func (h *Handlers) GetWorkpaper(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	wp, err := h.signoffService.GetWorkpaper(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: wp})
}

// UpdateContentRequest is the request body for editing a workpaper
type UpdateContentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// UpdateWorkpaperContent handles PUT /api/workpapers/:id/content
func (h *Handlers) UpdateWorkpaperContent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.signoffService.UpdateContent(c.Request.Context(), id, req.Title, req.Content, actingUser(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"id": id}})
}

// SignoffStatus handles GET /api/workpapers/:id/signoffs
func (h *Handlers) SignoffStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	status, err := h.signoffService.GetStatus(c.Request.Context(), id, actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: status})
}

// CreateSignoffRequest is the request body for recording a sign-off
type CreateSignoffRequest struct {
	SignoffType string `json:"signoff_type" binding:"required"`
	Comments    string `json:"comments"`
}

// CreateSignoff handles POST /api/workpapers/:id/signoffs
func (h *Handlers) CreateSignoff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CreateSignoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	row, err := h.signoffService.CreateSignoff(
		c.Request.Context(),
		id,
		signoff.Type(req.SignoffType),
		actingUser(c),
		req.Comments,
		c.Request.UserAgent(),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: row})
}

// RevokeSignoffRequest is the request body for revoking a sign-off
type RevokeSignoffRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RevokeSignoff handles DELETE /api/signoffs/:id
func (h *Handlers) RevokeSignoff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RevokeSignoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.signoffService.RevokeSignoff(c.Request.Context(), id, actingUser(c), req.Reason); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"id": id}})
}
