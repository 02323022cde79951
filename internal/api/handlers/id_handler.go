package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

// IDHandler handles HTTP requests for identifier issuance
type IDHandler struct {
	service *application.IDService
	logger  *logging.Logger
}

// NewIDHandler creates a new IDHandler
func NewIDHandler(service *application.IDService, logger *logging.Logger) *IDHandler {
	return &IDHandler{service: service, logger: logger}
}

// GenerateID handles POST /api/v1/ids
func (h *IDHandler) GenerateID(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.GenerateIDCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	middleware.AddSpanAttributes(c, attribute.String("entity.kind", cmd.Kind))

	result, err := h.service.GenerateID(c.Request.Context(), cmd)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
