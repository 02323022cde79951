package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/internal/domain"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/metrics"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

// ItemHandler handles HTTP requests for inventory items
type ItemHandler struct {
	service *application.ItemService
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service *application.ItemService, logger *logging.Logger, m *metrics.Metrics) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// CreateItem handles POST /api/v1/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.CreateItemCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	middleware.AddSpanAttributes(c, attribute.String("item.name", cmd.Name))

	result, err := h.service.CreateItem(c.Request.Context(), cmd)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetItem handles GET /api/v1/items/:itemId
func (h *ItemHandler) GetItem(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, attribute.String("item.id", itemID))

	result, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	pagination := domain.Pagination{
		Page:     parseInt64Query(c, "page", 1),
		PageSize: parseInt64Query(c, "pageSize", 20),
	}

	result, err := h.service.ListItems(c.Request.Context(), pagination)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStock handles GET /api/v1/items/:itemId/stock
func (h *ItemHandler) GetStock(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, attribute.String("item.id", itemID))

	result, err := h.service.GetStock(c.Request.Context(), itemID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// UpdateReorderLevel handles PUT /api/v1/items/:itemId/reorder-level. The
// response carries the reorder classification under the new level so the
// caller sees immediately whether the change put the item into alert.
func (h *ItemHandler) UpdateReorderLevel(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.UpdateReorderLevelCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c,
		attribute.String("item.id", itemID),
		attribute.Float64("reorder.level", cmd.ReorderLevel),
	)

	result, err := h.service.UpdateReorderLevel(c.Request.Context(), itemID, cmd)
	if err != nil {
		respond(c, err)
		return
	}

	if result.ReorderRequired {
		h.metrics.RecordStockAlert("reorder_required")
	} else if result.LowStock {
		h.metrics.RecordStockAlert("low_stock")
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DeleteItem handles DELETE /api/v1/items/:itemId. Deletion is refused while
// open orders still reference the item.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, attribute.String("item.id", itemID))

	if err := h.service.DeleteItem(c.Request.Context(), itemID); err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
