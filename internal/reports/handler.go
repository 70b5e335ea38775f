package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"
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

// RegisterRoutes registers report routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/reports")
	{
		group.GET("/screening-masterlist", h.screeningMasterlist)
	}
}

// screeningMasterlist handles GET /api/v1/reports/screening-masterlist
func (h *Handler) screeningMasterlist(c *gin.Context) {
	file, err := h.service.ScreeningMasterlist(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.logger.Error("failed to build masterlist", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build masterlist"})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="screening-masterlist.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("failed to stream masterlist", zap.Error(err))
	}
}
