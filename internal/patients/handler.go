package patients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

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

// RegisterRoutes registers patient routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/patients")
	{
		group.POST("", h.createPatient)
		group.GET("", h.listPatients)
		group.GET("/:id", h.getPatient)
		group.PUT("/:id", h.updatePatient)
	}
}

// createPatient handles POST /api/v1/patients
func (h *Handler) createPatient(c *gin.Context) {
	var patient Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.CreatePatient(c.Request.Context(), &patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// listPatients handles GET /api/v1/patients
func (h *Handler) listPatients(c *gin.Context) {
	filter := ListFilter{
		Search:   c.Query("search"),
		Barangay: c.Query("barangay"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, total, err := h.service.ListPatients(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list patients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list patients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patients": list,
		"total":    total,
		"page":     filter.Page,
	})
}

// getPatient handles GET /api/v1/patients/:id
func (h *Handler) getPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get patient", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get patient"})
		return
	}
	c.JSON(http.StatusOK, patient)
}

// updatePatient handles PUT /api/v1/patients/:id
func (h *Handler) updatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	var patient Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patient.ID = id
	if err := h.service.UpdatePatient(c.Request.Context(), &patient); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
			return
		}
		h.logger.Error("failed to update patient", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update patient"})
		return
	}
	c.JSON(http.StatusOK, patient)
}
