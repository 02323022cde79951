package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/internal/domain"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

// ReferenceHandler handles HTTP requests for dimension sets (item types,
// categories, counties and the like) that populate entry screen dropdowns
type ReferenceHandler struct {
	service *application.ReferenceService
	logger  *logging.Logger
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(service *application.ReferenceService, logger *logging.Logger) *ReferenceHandler {
	return &ReferenceHandler{service: service, logger: logger}
}

// ListEntries handles GET /api/v1/reference/:kind. The optional parent query
// narrows hierarchical sets to one branch.
func (h *ReferenceHandler) ListEntries(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	kind := domain.ReferenceKind(c.Param("kind"))
	parent := c.Query("parent")

	middleware.AddSpanAttributes(c, attribute.String("reference.kind", string(kind)))

	result, err := h.service.ListEntries(c.Request.Context(), kind, parent)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// AddEntry handles POST /api/v1/reference/:kind
func (h *ReferenceHandler) AddEntry(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var req struct {
		Value  string `json:"value" binding:"required"`
		Parent string `json:"parent"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	kind := domain.ReferenceKind(c.Param("kind"))
	middleware.AddSpanAttributes(c,
		attribute.String("reference.kind", string(kind)),
		attribute.String("reference.value", req.Value),
	)

	result, err := h.service.AddEntry(c.Request.Context(), kind, req.Value, req.Parent)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
