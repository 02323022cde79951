package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// ItemService handles inventory item use cases
type ItemService struct {
	itemRepo  domain.ItemRepository
	orderRepo domain.OrderRepository
	idGen     domain.IDGenerator
	logger    *logging.Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo domain.ItemRepository,
	orderRepo domain.OrderRepository,
	idGen domain.IDGenerator,
	logger *logging.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		idGen:     idGen,
		logger:    logger,
	}
}

// CreateItem creates an inventory item
func (s *ItemService) CreateItem(ctx context.Context, cmd CreateItemCommand) (*ItemDTO, error) {
	itemID, err := s.idGen.NextID(domain.EntityKindItem)
	if err != nil {
		return nil, fmt.Errorf("failed to generate item id: %w", err)
	}

	item, err := domain.NewItem(itemID, cmd.Name, cmd.Type, cmd.Category, cmd.Subcategory,
		cmd.PurchaseCost, cmd.SaleCost, cmd.ReorderLevel)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.ErrValidationWithFields("item validation failed", verrs.Fields())
		}
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		s.logger.WithError(err).Error("Failed to save item", "itemId", itemID)
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("Item created", "itemId", itemID, "name", cmd.Name)

	return ToItemDTO(item), nil
}

// GetItem retrieves an item by ID
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*ItemDTO, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return ToItemDTO(item), nil
}

// ListItems lists items
func (s *ItemService) ListItems(ctx context.Context, pagination domain.Pagination) (*ItemListResponse, error) {
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination = domain.DefaultPagination()
	}

	items, err := s.itemRepo.FindAll(ctx, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = *ToItemDTO(item)
	}

	return &ItemListResponse{
		Data:     dtos,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// GetStock returns the reorder classification for an item
func (s *ItemService) GetStock(ctx context.Context, itemID string) (*StockDTO, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return ToStockDTO(item), nil
}

// UpdateReorderLevel changes an item's reorder threshold and returns the
// resulting classification.
func (s *ItemService) UpdateReorderLevel(ctx context.Context, itemID string, cmd UpdateReorderLevelCommand) (*StockDTO, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	c, err := item.SetReorderLevel(cmd.ReorderLevel)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	if c.Severity() != "" {
		s.logger.StockAlert(ctx, itemID, item.Remaining(), item.ReorderLevel, c.Severity())
	}

	return ToStockDTO(item), nil
}

// DeleteItem removes an item unless open orders still reference it.
func (s *ItemService) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := s.findItem(ctx, itemID); err != nil {
		return err
	}

	openOrders, err := s.orderRepo.CountOpenByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to check item references: %w", err)
	}
	if openOrders > 0 {
		return apperrors.ErrConflict("item is referenced by open orders").
			WithDetail("itemId", itemID)
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.Audit(ctx, "delete", "item", itemID, nil)

	return nil
}

func (s *ItemService) findItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, apperrors.ErrNotFoundWithID("item", itemID)
	}
	return item, nil
}
