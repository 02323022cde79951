package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// OrderService handles order-related use cases
type OrderService struct {
	orderRepo domain.OrderRepository
	partyRepo domain.PartyRepository
	itemRepo  domain.ItemRepository
	idGen     domain.IDGenerator
	logger    *logging.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo domain.OrderRepository,
	partyRepo domain.PartyRepository,
	itemRepo domain.ItemRepository,
	idGen domain.IDGenerator,
	logger *logging.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		partyRepo: partyRepo,
		itemRepo:  itemRepo,
		idGen:     idGen,
		logger:    logger,
	}
}

// SubmitOrder validates, prices, and persists an order in one call. Every
// invalid field is reported together; nothing is saved unless the whole
// order is valid.
func (s *OrderService) SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (*OrderDTO, error) {
	kind := domain.OrderKind(cmd.Kind)
	if !kind.IsValid() {
		return nil, apperrors.ErrValidation("kind must be \"purchase\" or \"sale\"")
	}

	var verrs domain.ValidationErrors

	counterparty, err := s.partyRepo.FindByID(ctx, cmd.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counterparty: %w", err)
	}
	counterpartyName := ""
	switch {
	case counterparty == nil:
		verrs.Add("counterpartyId", "counterparty not found")
	case kind == domain.OrderKindPurchase && counterparty.Kind != domain.PartyKindSupplier:
		verrs.Add("counterpartyId", "purchase orders require a supplier")
	case kind == domain.OrderKindSale && counterparty.Kind != domain.PartyKindCustomer:
		verrs.Add("counterpartyId", "sales orders require a customer")
	default:
		counterpartyName = counterparty.Name
	}

	orderID := cmd.OrderID
	if orderID == "" {
		orderID, err = s.idGen.NextID(kind.EntityKind())
		if err != nil {
			return nil, fmt.Errorf("failed to generate order id: %w", err)
		}
	}

	lines := make([]domain.LineInput, 0, len(cmd.Lines))
	for idx, lc := range cmd.Lines {
		field := func(name string) string { return fmt.Sprintf("lines[%d].%s", idx, name) }

		taxRate, err := domain.ParseTaxRate(lc.TaxRate)
		if err != nil {
			verrs.Add(field("taxRate"), err.Error())
		}

		itemName := ""
		item, err := s.itemRepo.FindByID(ctx, lc.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			verrs.Add(field("itemId"), "item not found")
		} else {
			itemName = item.Name
		}

		lineID, err := s.idGen.NextID(domain.EntityKindOrderLine)
		if err != nil {
			return nil, fmt.Errorf("failed to generate line id: %w", err)
		}

		lines = append(lines, domain.LineInput{
			LineID:         lineID,
			ItemID:         lc.ItemID,
			ItemName:       itemName,
			Quantity:       lc.Quantity,
			UnitCost:       lc.UnitCost,
			TaxRatePercent: taxRate,
			Shipping:       lc.Shipping,
		})
	}

	order, err := domain.NewOrder(orderID, kind, cmd.CounterpartyID, counterpartyName, cmd.OrderDate, cmd.ReferenceNumber, lines)
	if err != nil {
		var domainVerrs domain.ValidationErrors
		if errors.As(err, &domainVerrs) {
			verrs = append(verrs, domainVerrs...)
		} else {
			return nil, apperrors.ErrValidation(err.Error())
		}
	}
	if verrs.HasErrors() {
		return nil, apperrors.ErrValidationWithFields("order validation failed", verrs.Fields())
	}

	if err := order.Submit(); err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to save order", "orderId", order.OrderID)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order submitted",
		"orderId", order.OrderID,
		"kind", order.Kind,
		"counterpartyId", order.CounterpartyID,
		"grandTotal", order.Totals.GrandTotal,
		"lines", len(order.Lines),
	)

	return ToOrderDTO(order), nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", orderID)
	}
	return ToOrderDTO(order), nil
}

// ListOrders lists orders matching a query
func (s *OrderService) ListOrders(ctx context.Context, query ListOrdersQuery) (*OrderListResponse, error) {
	pagination := domain.Pagination{Page: query.Page, PageSize: query.PageSize}
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination = domain.DefaultPagination()
	}

	filter := domain.OrderFilter{}
	if query.Kind != nil {
		kind := domain.OrderKind(*query.Kind)
		if !kind.IsValid() {
			return nil, apperrors.ErrValidation("kind must be \"purchase\" or \"sale\"")
		}
		filter.Kind = &kind
	}
	if query.CounterpartyID != nil {
		filter.CounterpartyID = query.CounterpartyID
	}
	if query.Status != nil {
		status := domain.OrderStatus(*query.Status)
		filter.Status = &status
	}

	orders, err := s.orderRepo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = *ToOrderDTO(o)
	}

	return &OrderListResponse{
		Data:     dtos,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// AcceptOrder confirms a submitted order and applies its side effects: stock
// movements on every line and the counterparty balance update. A sales order
// that would oversell any item is refused whole.
func (s *OrderService) AcceptOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", orderID)
	}

	// Load and move stock before flipping the status, so an unavailable item
	// leaves the order untouched.
	items := make([]*domain.Item, len(order.Lines))
	for i, line := range order.Lines {
		item, err := s.itemRepo.FindByID(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return nil, apperrors.ErrNotFoundWithID("item", line.ItemID)
		}

		if order.Kind == domain.OrderKindSale {
			if err := item.RecordSale(line.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return nil, apperrors.ErrBusinessRule(apperrors.ReasonInsufficientStock,
						fmt.Sprintf("insufficient stock for item %s", line.ItemID)).
						WithDetail("itemId", line.ItemID)
				}
				return nil, apperrors.ErrValidation(err.Error())
			}
		} else {
			if err := item.RecordPurchase(line.Quantity); err != nil {
				return nil, apperrors.ErrValidation(err.Error())
			}
		}
		items[i] = item
	}

	if err := order.Accept(); err != nil {
		return nil, apperrors.ErrBusinessRule(apperrors.ReasonInvalidTransition, err.Error())
	}

	for _, item := range items {
		if err := s.itemRepo.Save(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to save item: %w", err)
		}
		if c := item.Classification(); c.Severity() != "" {
			s.logger.StockAlert(ctx, item.ItemID, item.Remaining(), item.ReorderLevel, c.Severity())
		}
	}

	counterparty, err := s.partyRepo.FindByID(ctx, order.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counterparty: %w", err)
	}
	if counterparty != nil {
		counterparty.RecordOrder(order.Totals.GrandTotal)
		if err := s.partyRepo.Save(ctx, counterparty); err != nil {
			return nil, fmt.Errorf("failed to save counterparty: %w", err)
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to save order", "orderId", orderID)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order accepted", "orderId", orderID, "grandTotal", order.Totals.GrandTotal)

	return ToOrderDTO(order), nil
}

// RejectOrder declines a submitted order, keeping its contents for correction.
func (s *OrderService) RejectOrder(ctx context.Context, orderID string, cmd RejectOrderCommand) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", orderID)
	}

	if err := order.Reject(cmd.Reason); err != nil {
		return nil, apperrors.ErrBusinessRule(apperrors.ReasonInvalidTransition, err.Error())
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order rejected", "orderId", orderID, "reason", cmd.Reason)

	return ToOrderDTO(order), nil
}
