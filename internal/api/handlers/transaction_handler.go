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

// TransactionHandler handles HTTP requests for one settlement direction.
// Registered twice: payments go out against purchase orders, receipts come
// in against sales orders.
type TransactionHandler struct {
	service *application.TransactionService
	kind    domain.TransactionKind
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewTransactionHandler creates a TransactionHandler bound to a transaction kind
func NewTransactionHandler(service *application.TransactionService, kind domain.TransactionKind, logger *logging.Logger, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		kind:    kind,
		logger:  logger,
		metrics: m,
	}
}

// RecordTransaction handles POST /api/v1/payments and POST /api/v1/receipts
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.CreateTransactionCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	middleware.AddSpanAttributes(c,
		attribute.String("transaction.kind", string(h.kind)),
		attribute.String("order.id", cmd.OrderID),
		attribute.Float64("transaction.amount", cmd.Amount),
	)

	result, err := h.service.RecordTransaction(c.Request.Context(), h.kind, cmd)
	if err != nil {
		respond(c, err)
		return
	}

	h.metrics.RecordTransaction(string(h.kind))
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetTransaction handles GET /api/v1/{payments,receipts}/:transactionId
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	transactionID := c.Param("transactionId")
	middleware.AddSpanAttributes(c, attribute.String("transaction.id", transactionID))

	result, err := h.service.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListTransactions handles GET /api/v1/{payments,receipts}
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	pagination := domain.Pagination{
		Page:     parseInt64Query(c, "page", 1),
		PageSize: parseInt64Query(c, "pageSize", 20),
	}

	result, err := h.service.ListTransactions(c.Request.Context(), h.kind, pagination)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
