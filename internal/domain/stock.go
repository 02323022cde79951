package domain

// LowStockFactor is the multiple of the reorder level below which an item is
// flagged as approaching its reorder point.
const LowStockFactor = 1.5

// StockClassification is the reorder state of an inventory item.
type StockClassification struct {
	ReorderRequired bool `json:"reorderRequired"`
	LowStock        bool `json:"lowStock"`
}

// ClassifyStock evaluates the reorder rules for a stock position. Reorder is
// required when remaining stock falls strictly below the reorder level; a
// level equal to remaining stock does not trigger it. LowStock marks the
// warning band between the reorder level and 1.5x the reorder level. An item
// with no reorder level configured (zero) is never flagged.
func ClassifyStock(remaining, reorderLevel float64) StockClassification {
	if reorderLevel <= 0 {
		return StockClassification{}
	}

	reorder := remaining < reorderLevel
	return StockClassification{
		ReorderRequired: reorder,
		LowStock:        !reorder && remaining < reorderLevel*LowStockFactor,
	}
}

// Severity returns a label for alerting, empty when stock is healthy.
func (s StockClassification) Severity() string {
	switch {
	case s.ReorderRequired:
		return "reorder"
	case s.LowStock:
		return "low"
	default:
		return ""
	}
}
