package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
)

func newItemService(itemRepo *fakeItemRepo, orderRepo *fakeOrderRepo) *ItemService {
	return NewItemService(itemRepo, orderRepo, &seqIDGenerator{}, testLogger())
}

func TestCreateItemSuccess(t *testing.T) {
	var saved *domain.Item
	itemRepo := &fakeItemRepo{
		saveFn: func(_ context.Context, i *domain.Item) error {
			saved = i
			return nil
		},
	}

	service := newItemService(itemRepo, &fakeOrderRepo{})

	dto, err := service.CreateItem(context.Background(), CreateItemCommand{
		Name:         "Maize Flour 2kg",
		Type:         "product",
		Category:     "Dry Goods",
		Subcategory:  "Flour",
		PurchaseCost: 5,
		SaleCost:     7,
		ReorderLevel: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, saved.ItemID, dto.ItemID)
	assert.Equal(t, 0.0, dto.Remaining)
	assert.True(t, dto.ReorderRequired)
	assert.False(t, dto.LowStock)
}

func TestCreateItemValidationFailure(t *testing.T) {
	service := newItemService(&fakeItemRepo{}, &fakeOrderRepo{})

	_, err := service.CreateItem(context.Background(), CreateItemCommand{ReorderLevel: -1})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "reorderLevel")
}

func TestGetStockClassification(t *testing.T) {
	item := testItem(t, 20, 8, 10)

	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Item, error) {
			return item, nil
		},
	}

	service := newItemService(itemRepo, &fakeOrderRepo{})

	dto, err := service.GetStock(context.Background(), "ITEM-001")
	require.NoError(t, err)

	assert.Equal(t, 12.0, dto.Remaining)
	assert.False(t, dto.ReorderRequired)
	assert.True(t, dto.LowStock)
}

func TestUpdateReorderLevel(t *testing.T) {
	item := testItem(t, 20, 8, 5)

	var saved *domain.Item
	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Item, error) {
			return item, nil
		},
		saveFn: func(_ context.Context, i *domain.Item) error {
			saved = i
			return nil
		},
	}

	service := newItemService(itemRepo, &fakeOrderRepo{})

	dto, err := service.UpdateReorderLevel(context.Background(), "ITEM-001", UpdateReorderLevelCommand{ReorderLevel: 15})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, 15.0, saved.ReorderLevel)
	assert.True(t, dto.ReorderRequired)
}

func TestUpdateReorderLevelNegative(t *testing.T) {
	item := testItem(t, 20, 8, 5)
	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Item, error) {
			return item, nil
		},
		saveFn: func(_ context.Context, _ *domain.Item) error {
			t.Fatal("item must not be saved on invalid input")
			return nil
		},
	}

	service := newItemService(itemRepo, &fakeOrderRepo{})

	_, err := service.UpdateReorderLevel(context.Background(), "ITEM-001", UpdateReorderLevelCommand{ReorderLevel: -3})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestDeleteItemBlockedByOpenOrders(t *testing.T) {
	item := testItem(t, 0, 0, 10)
	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Item, error) {
			return item, nil
		},
		deleteFn: func(_ context.Context, _ string) error {
			t.Fatal("referenced item must not be deleted")
			return nil
		},
	}
	orderRepo := &fakeOrderRepo{
		countOpenByItemFn: func(_ context.Context, _ string) (int64, error) {
			return 2, nil
		},
	}

	service := newItemService(itemRepo, orderRepo)

	err := service.DeleteItem(context.Background(), "ITEM-001")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestDeleteItemUnreferenced(t *testing.T) {
	item := testItem(t, 0, 0, 10)
	var deleted string
	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Item, error) {
			return item, nil
		},
		deleteFn: func(_ context.Context, itemID string) error {
			deleted = itemID
			return nil
		},
	}

	service := newItemService(itemRepo, &fakeOrderRepo{})

	require.NoError(t, service.DeleteItem(context.Background(), "ITEM-001"))
	assert.Equal(t, "ITEM-001", deleted)
}
