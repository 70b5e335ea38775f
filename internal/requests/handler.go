package requests

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
)

// Handler handles HTTP requests for service-request operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers request routes. admin guards the endpoints only
// administrators may call.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, admin gin.HandlerFunc) {
	reqs := router.Group("/requests")
	{
		reqs.POST("", h.createRequest)
		reqs.GET("", h.listRequests)
		reqs.GET("/:id", h.getRequest)
		reqs.GET("/:id/transitions", h.getTransitions)
		reqs.POST("/:id/status", admin, h.changeStatus)
	}
}

type createRequestBody struct {
	PatientID string `json:"patient_id" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
}

// createRequest handles POST /api/v1/requests
func (h *Handler) createRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient_id"})
		return
	}

	req := &ServiceRequest{PatientID: patientID, Kind: body.Kind}
	if err := h.service.CreateRequest(c.Request.Context(), req); err != nil {
		h.logger.Error("failed to create request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// listRequests handles GET /api/v1/requests
func (h *Handler) listRequests(c *gin.Context) {
	filter := ListFilter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient_id"})
			return
		}
		filter.PatientID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	reqs, total, err := h.service.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": reqs,
		"total":    total,
		"page":     filter.Page,
	})
}

// getRequest handles GET /api/v1/requests/:id
func (h *Handler) getRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	req, err := h.service.GetRequest(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get request"})
		return
	}
	c.JSON(http.StatusOK, req)
}

// getTransitions handles GET /api/v1/requests/:id/transitions: the legal
// next statuses, so the UI never offers an illegal jump in the first place.
func (h *Handler) getTransitions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	next, err := h.service.LegalTransitions(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get transitions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transitions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": next})
}

type changeStatusBody struct {
	TargetStatus string            `json:"target_status" binding:"required"`
	Dates        map[string]string `json:"dates"`
	Remark       string            `json:"remark"`
	FileKey      string            `json:"file_key"`
}

// changeStatus handles POST /api/v1/requests/:id/status
func (h *Handler) changeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	var body changeStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := TransitionInput{
		Remark:  body.Remark,
		FileKey: body.FileKey,
		Dates:   map[string]time.Time{},
	}
	for field, raw := range body.Dates {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date for " + field + ", expected YYYY-MM-DD"})
			return
		}
		input.Dates[field] = d
	}

	outcome, err := h.service.AttemptTransition(c.Request.Context(), id, body.TargetStatus, input)
	if err != nil {
		h.respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// respondTransitionError maps the engine's error taxonomy onto HTTP. A
// precondition failure is a field-level prompt for the operator, not a
// generic error banner.
func (h *Handler) respondTransitionError(c *gin.Context, err error) {
	var pcErr *lifecycle.PreconditionError
	if errors.As(err, &pcErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "precondition_failed",
			"failures": pcErr.Failures,
		})
		return
	}
	var illegalErr *lifecycle.IllegalTransitionError
	if errors.As(err, &illegalErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "illegal_transition",
			"message": illegalErr.Error(),
		})
		return
	}
	if errors.Is(err, ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "stale_request",
			"message": "request changed since it was loaded, reload and retry",
		})
		return
	}
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	var kindErr *lifecycle.UnknownKindError
	var statusErr *lifecycle.UnknownStatusError
	if errors.As(err, &kindErr) || errors.As(err, &statusErr) {
		// Data integrity problem, not a user mistake.
		h.logger.Error("request record fails integrity check", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("transition attempt failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "transition failed"})
}
