package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T) *Item {
	t.Helper()
	item, err := NewItem("ITEM-00000001", "Widget", "hardware", "fasteners", "bolts", 2.50, 4.00, 10)
	require.NoError(t, err)
	return item
}

func TestNewItemCollectsValidationErrors(t *testing.T) {
	_, err := NewItem("", "", "", "", "", -1, -1, -1)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := verrs.Fields()
	assert.Contains(t, fields, "itemId")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "purchaseCost")
	assert.Contains(t, fields, "saleCost")
	assert.Contains(t, fields, "reorderLevel")
}

func TestItemStockLedger(t *testing.T) {
	item := newTestItem(t)
	assert.Equal(t, 0.0, item.Remaining())

	require.NoError(t, item.RecordPurchase(50))
	require.NoError(t, item.RecordSale(30))
	assert.Equal(t, 20.0, item.Remaining())

	c := item.Classification()
	assert.False(t, c.ReorderRequired)
	assert.False(t, c.LowStock)
}

func TestItemRecordSaleInsufficientStock(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.RecordPurchase(5))

	assert.ErrorIs(t, item.RecordSale(6), ErrInsufficientStock)
	assert.Equal(t, 5.0, item.Remaining())
}

func TestItemRejectsNonPositiveMovements(t *testing.T) {
	item := newTestItem(t)
	assert.ErrorIs(t, item.RecordPurchase(0), ErrMovementNotPositive)
	assert.ErrorIs(t, item.RecordSale(-1), ErrMovementNotPositive)
}

func TestItemSetReorderLevel(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.RecordPurchase(12))

	c, err := item.SetReorderLevel(10)
	require.NoError(t, err)
	assert.False(t, c.ReorderRequired)
	assert.True(t, c.LowStock)

	c, err = item.SetReorderLevel(20)
	require.NoError(t, err)
	assert.True(t, c.ReorderRequired)

	_, err = item.SetReorderLevel(-1)
	assert.ErrorIs(t, err, ErrReorderLevelNegative)
}
