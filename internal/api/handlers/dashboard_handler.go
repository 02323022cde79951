package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

// DashboardHandler handles HTTP requests for the dashboard summary
type DashboardHandler struct {
	service *application.DashboardService
	logger  *logging.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *application.DashboardService, logger *logging.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	result, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
