package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/provalon/quality-engine/internal/application/service"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

// Context keys set by the identity middleware.
const (
	ctxUserID = "user_id"
	ctxOrgID  = "org_id"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	statusService     service.StatusService
	ncrService        service.NCRService
	permissionService service.PermissionService
	reportService     service.ReportService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	statusService service.StatusService,
	ncrService service.NCRService,
	permissionService service.PermissionService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		statusService:     statusService,
		ncrService:        ncrService,
		permissionService: permissionService,
		reportService:     reportService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValidationDetail carries every accumulated failure so a form can surface
// all of them in one round trip.
type ValidationDetail struct {
	Errors          []string                   `json:"errors"`
	RequiredActions transition.RequiredActions `json:"required_actions,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ValidateTransitionRequest is the body of POST /status/validate-transition.
type ValidateTransitionRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
	FromStatus string `json:"from_status" binding:"required"`
	ToStatus   string `json:"to_status" binding:"required"`
	Reason     string `json:"reason" binding:"omitempty,min=10"`
}

// ChangeStatusRequest is the body of POST /status/change.
type ChangeStatusRequest struct {
	EntityType   string  `json:"entity_type" binding:"required"`
	EntityID     string  `json:"entity_id" binding:"required"`
	ToStatus     string  `json:"to_status" binding:"required"`
	Reason       string  `json:"reason" binding:"omitempty,min=10"`
	InspectionID *string `json:"inspection_id"`
}

// RegisterEntityRequest is the body of POST /status/register.
type RegisterEntityRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
}

// CreateNCRRequest is the body of POST /ncrs.
type CreateNCRRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	AssignedTo  *string `json:"assigned_to"`
}

// ChangeNCRStatusRequest is the body of POST /ncrs/:id/status.
type ChangeNCRStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"omitempty,min=10"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListStatusTypes handles GET /api/quality/status/types
func (h *Handlers) ListStatusTypes(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.statusService.ListStatusTypes(),
	})
}

// CreateCustomStatus handles POST /api/quality/status/types. The status set
// is fixed; the route exists so clients get a deliberate answer instead of 404.
func (h *Handlers) CreateCustomStatus(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, Response{
		Success: false,
		Error:   "custom status types are not supported",
	})
}

// ListTransitions handles GET /api/quality/status/transitions?current=STATUS.
// A status with no outgoing edges yields an empty list, not an error.
func (h *Handlers) ListTransitions(c *gin.Context) {
	current := c.Query("current")
	if current == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing required query parameter: current",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.statusService.ValidTransitionsFrom(status.QualityStatus(current)),
	})
}

// ValidateTransition handles POST /api/quality/status/validate-transition.
// The outcome is always 200; an invalid transition is a result, not an error.
func (h *Handlers) ValidateTransition(c *gin.Context) {
	var req ValidateTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	result, err := h.statusService.Validate(c.Request.Context(), service.ValidateRequest{
		OrgID:      c.GetString(ctxOrgID),
		EntityType: status.EntityType(req.EntityType),
		EntityID:   req.EntityID,
		FromStatus: status.QualityStatus(req.FromStatus),
		ToStatus:   status.QualityStatus(req.ToStatus),
		Reason:     req.Reason,
		ActorID:    c.GetString(ctxUserID),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// ChangeStatus handles POST /api/quality/status/change
func (h *Handlers) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	result, err := h.statusService.ChangeStatus(c.Request.Context(), service.ChangeStatusRequest{
		OrgID:        c.GetString(ctxOrgID),
		EntityType:   status.EntityType(req.EntityType),
		EntityID:     req.EntityID,
		ToStatus:     status.QualityStatus(req.ToStatus),
		Reason:       req.Reason,
		InspectionID: req.InspectionID,
		ActorID:      c.GetString(ctxUserID),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// RegisterEntity handles POST /api/quality/status/register
func (h *Handlers) RegisterEntity(c *gin.Context) {
	var req RegisterEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	result, err := h.statusService.RegisterEntity(c.Request.Context(),
		c.GetString(ctxOrgID), status.EntityType(req.EntityType), req.EntityID, c.GetString(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    result,
	})
}

// GetHistory handles GET /api/quality/status/history/:entityType/:entityId
func (h *Handlers) GetHistory(c *gin.Context) {
	limit, offset := paginationParams(c)

	entries, err := h.statusService.History(c.Request.Context(),
		c.GetString(ctxOrgID), status.EntityType(c.Param("entityType")), c.Param("entityId"), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// GetPermissions handles GET /api/quality/status/permissions/:entityType/:entityId
func (h *Handlers) GetPermissions(c *gin.Context) {
	perms, err := h.permissionService.Permissions(c.Request.Context(),
		c.GetString(ctxOrgID), status.EntityType(c.Param("entityType")), c.Param("entityId"), c.GetString(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    perms,
	})
}

// ExportAuditTrail handles GET /api/quality/status/report/:entityType/:entityId
func (h *Handlers) ExportAuditTrail(c *gin.Context) {
	entityType := c.Param("entityType")
	entityID := c.Param("entityId")

	data, err := h.reportService.AuditTrail(c.Request.Context(),
		c.GetString(ctxOrgID), status.EntityType(entityType), entityID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("audit-trail-%s-%s.xlsx", entityType, entityID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// CreateNCR handles POST /api/quality/ncrs
func (h *Handlers) CreateNCR(c *gin.Context) {
	var req CreateNCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	ncr, err := h.ncrService.Create(c.Request.Context(), service.CreateNCRRequest{
		OrgID:       c.GetString(ctxOrgID),
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		AssignedTo:  req.AssignedTo,
		ActorID:     c.GetString(ctxUserID),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    ncr,
	})
}

// ListNCRs handles GET /api/quality/ncrs
func (h *Handlers) ListNCRs(c *gin.Context) {
	limit, offset := paginationParams(c)

	ncrs, err := h.ncrService.List(c.Request.Context(), c.GetString(ctxOrgID), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ncrs,
	})
}

// GetNCR handles GET /api/quality/ncrs/:id
func (h *Handlers) GetNCR(c *gin.Context) {
	ncr, err := h.ncrService.Get(c.Request.Context(), c.GetString(ctxOrgID), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ncr,
	})
}

// ChangeNCRStatus handles POST /api/quality/ncrs/:id/status
func (h *Handlers) ChangeNCRStatus(c *gin.Context) {
	var req ChangeNCRStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	result, err := h.ncrService.ChangeStatus(c.Request.Context(),
		c.GetString(ctxOrgID), c.Param("id"), transition.State(req.Status), req.Reason, c.GetString(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// paginationParams reads limit/offset query parameters; the services clamp.
func paginationParams(c *gin.Context) (int, int) {
	var q struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	_ = c.ShouldBindQuery(&q)
	return q.Limit, q.Offset
}

// respondBadRequest reports a request-shape problem (malformed JSON, missing
// fields, reason below the minimum length).
func (h *Handlers) respondBadRequest(c *gin.Context, err error) {
	h.logger.Error("Invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   "invalid request: " + err.Error(),
	})
}

// respondError maps the engine's error taxonomy onto HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var ve *qerrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Data: ValidationDetail{
				Errors:          ve.Errors,
				RequiredActions: ve.RequiredActions,
			},
		})
		return
	}

	switch {
	case qerrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case qerrors.IsPermission(err):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case qerrors.IsConcurrency(err):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Internal error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}
