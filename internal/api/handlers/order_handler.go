package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/metrics"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

// OrderHandler handles HTTP requests for purchase and sales orders
type OrderHandler struct {
	service   *application.OrderService
	txService *application.TransactionService
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *application.OrderService, txService *application.TransactionService, logger *logging.Logger, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{
		service:   service,
		txService: txService,
		logger:    logger,
		metrics:   m,
	}
}

// SubmitOrder handles POST /api/v1/orders
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.SubmitOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	middleware.AddSpanAttributes(c,
		attribute.String("order.kind", cmd.Kind),
		attribute.String("counterparty.id", cmd.CounterpartyID),
		attribute.Int("order.lines", len(cmd.Lines)),
	)

	result, err := h.service.SubmitOrder(c.Request.Context(), cmd)
	if err != nil {
		respond(c, err)
		return
	}

	h.metrics.RecordOrderSubmitted(result.Kind)
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetOrder handles GET /api/v1/orders/:orderId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, attribute.String("order.id", orderID))

	result, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	query := application.ListOrdersQuery{
		Page:     parseInt64Query(c, "page", 1),
		PageSize: parseInt64Query(c, "pageSize", 20),
	}
	if kind := c.Query("kind"); kind != "" {
		query.Kind = &kind
	}
	if counterpartyID := c.Query("counterpartyId"); counterpartyID != "" {
		query.CounterpartyID = &counterpartyID
	}
	if status := c.Query("status"); status != "" {
		query.Status = &status
	}

	result, err := h.service.ListOrders(c.Request.Context(), query)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AcceptOrder handles PUT /api/v1/orders/:orderId/accept
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, attribute.String("order.id", orderID))

	result, err := h.service.AcceptOrder(c.Request.Context(), orderID)
	if err != nil {
		respond(c, err)
		return
	}

	h.metrics.RecordOrderResolved(result.Kind, result.Status)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// RejectOrder handles PUT /api/v1/orders/:orderId/reject
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.RejectOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, attribute.String("order.id", orderID))

	result, err := h.service.RejectOrder(c.Request.Context(), orderID, cmd)
	if err != nil {
		respond(c, err)
		return
	}

	h.metrics.RecordOrderResolved(result.Kind, result.Status)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListOrderTransactions handles GET /api/v1/orders/:orderId/transactions
func (h *OrderHandler) ListOrderTransactions(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, attribute.String("order.id", orderID))

	result, err := h.txService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func parseInt64Query(c *gin.Context, name string, fallback int64) int64 {
	v, err := strconv.ParseInt(c.DefaultQuery(name, strconv.FormatInt(fallback, 10)), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
