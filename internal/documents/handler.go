package documents

import (
	"errors"
	"net/http"

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

// RegisterRoutes registers document routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/requests/:id/documents")
	{
		docs.GET("", h.getChecklist)
		docs.POST("/:slot", h.uploadDocument)
		docs.GET("/:slot/url", h.getDownloadURL)
	}
}

// getChecklist handles GET /api/v1/requests/:id/documents
func (h *Handler) getChecklist(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	slots, err := h.service.Checklist(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("failed to load checklist", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load checklist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": slots})
}

// uploadDocument handles POST /api/v1/requests/:id/documents/:slot
func (h *Handler) uploadDocument(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	uploadedBy, _ := uuid.Parse(c.GetString("user_id"))

	slot, err := h.service.Upload(c.Request.Context(), UploadRequest{
		RequestID:  requestID,
		SlotKey:    c.Param("slot"),
		FileName:   fileHeader.Filename,
		FileSize:   fileHeader.Size,
		Content:    file,
		UploadedBy: uploadedBy,
	})
	if errors.Is(err, ErrSlotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such document slot for this request"})
		return
	}
	if err != nil {
		h.logger.Error("failed to upload document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload document"})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// getDownloadURL handles GET /api/v1/requests/:id/documents/:slot/url
func (h *Handler) getDownloadURL(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	url, err := h.service.DownloadURL(c.Request.Context(), requestID, c.Param("slot"))
	if errors.Is(err, ErrSlotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such document slot for this request"})
		return
	}
	if err != nil {
		h.logger.Error("failed to presign document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
