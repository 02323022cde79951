package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStockReorderRequired(t *testing.T) {
	c := ClassifyStock(5, 10)
	assert.True(t, c.ReorderRequired)
	assert.False(t, c.LowStock)
	assert.Equal(t, "reorder", c.Severity())
}

func TestClassifyStockLowStockBand(t *testing.T) {
	c := ClassifyStock(12, 10)
	assert.False(t, c.ReorderRequired)
	assert.True(t, c.LowStock)
	assert.Equal(t, "low", c.Severity())
}

func TestClassifyStockHealthy(t *testing.T) {
	c := ClassifyStock(20, 10)
	assert.False(t, c.ReorderRequired)
	assert.False(t, c.LowStock)
	assert.Equal(t, "", c.Severity())
}

func TestClassifyStockEqualToLevelDoesNotReorder(t *testing.T) {
	// Strictly below the level triggers reorder; equality does not.
	c := ClassifyStock(10, 10)
	assert.False(t, c.ReorderRequired)
	assert.True(t, c.LowStock)
}

func TestClassifyStockBandUpperBoundIsExclusive(t *testing.T) {
	c := ClassifyStock(15, 10)
	assert.False(t, c.ReorderRequired)
	assert.False(t, c.LowStock)
}

func TestClassifyStockZeroLevelNeverFlags(t *testing.T) {
	for _, remaining := range []float64{0, 1, 100} {
		c := ClassifyStock(remaining, 0)
		assert.False(t, c.ReorderRequired)
		assert.False(t, c.LowStock)
	}
}
