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

// PartyHandler handles HTTP requests for one side of the ledger. It is
// registered twice, once for customers and once for suppliers, so the two
// route groups stay separate while sharing the implementation.
type PartyHandler struct {
	service *application.PartyService
	kind    domain.PartyKind
	logger  *logging.Logger
}

// NewPartyHandler creates a PartyHandler bound to a party kind
func NewPartyHandler(service *application.PartyService, kind domain.PartyKind, logger *logging.Logger) *PartyHandler {
	return &PartyHandler{
		service: service,
		kind:    kind,
		logger:  logger,
	}
}

// CreateParty handles POST /api/v1/customers and POST /api/v1/suppliers
func (h *PartyHandler) CreateParty(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.CreatePartyCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	middleware.AddSpanAttributes(c,
		attribute.String("party.kind", string(h.kind)),
		attribute.String("party.name", cmd.Name),
	)

	result, err := h.service.CreateParty(c.Request.Context(), h.kind, cmd)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetParty handles GET /api/v1/{customers,suppliers}/:partyId
func (h *PartyHandler) GetParty(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	partyID := c.Param("partyId")
	middleware.AddSpanAttributes(c,
		attribute.String("party.kind", string(h.kind)),
		attribute.String("party.id", partyID),
	)

	result, err := h.service.GetParty(c.Request.Context(), h.kind, partyID)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListParties handles GET /api/v1/{customers,suppliers}
func (h *PartyHandler) ListParties(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	pagination := domain.Pagination{
		Page:     parseInt64Query(c, "page", 1),
		PageSize: parseInt64Query(c, "pageSize", 20),
	}

	result, err := h.service.ListParties(c.Request.Context(), h.kind, pagination)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateParty handles PUT /api/v1/{customers,suppliers}/:partyId
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	var cmd application.UpdatePartyCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	partyID := c.Param("partyId")
	middleware.AddSpanAttributes(c,
		attribute.String("party.kind", string(h.kind)),
		attribute.String("party.id", partyID),
	)

	result, err := h.service.UpdateParty(c.Request.Context(), h.kind, partyID, cmd)
	if err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DeleteParty handles DELETE /api/v1/{customers,suppliers}/:partyId. Deletion
// is refused while the party still owes or is owed money.
func (h *PartyHandler) DeleteParty(c *gin.Context) {
	respond := middleware.ErrorResponder(h.logger)

	partyID := c.Param("partyId")
	middleware.AddSpanAttributes(c,
		attribute.String("party.kind", string(h.kind)),
		attribute.String("party.id", partyID),
	)

	if err := h.service.DeleteParty(c.Request.Context(), h.kind, partyID); err != nil {
		respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
