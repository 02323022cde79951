package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item domain errors
var (
	ErrInsufficientStock    = errors.New("insufficient stock for requested quantity")
	ErrReorderLevelNegative = errors.New("reorder level must be zero or greater")
	ErrMovementNotPositive  = errors.New("stock movement quantity must be greater than zero")
)

// Item is an inventory item with its stock ledger. Remaining stock is always
// derived from the purchased and sold counters rather than stored, so the two
// sides cannot drift apart.
type Item struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID string             `bson:"itemId" json:"itemId"`

	Name        string `bson:"name" json:"name"`
	Type        string `bson:"type,omitempty" json:"type,omitempty"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	Subcategory string `bson:"subcategory,omitempty" json:"subcategory,omitempty"`

	PurchaseCost float64 `bson:"purchaseCost" json:"purchaseCost"`
	SaleCost     float64 `bson:"saleCost" json:"saleCost"`

	QuantityPurchased float64 `bson:"quantityPurchased" json:"quantityPurchased"`
	QuantitySold      float64 `bson:"quantitySold" json:"quantitySold"`
	ReorderLevel      float64 `bson:"reorderLevel" json:"reorderLevel"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewItem creates an inventory item. All validation failures are collected.
func NewItem(itemID, name, itemType, category, subcategory string, purchaseCost, saleCost, reorderLevel float64) (*Item, error) {
	var verrs ValidationErrors

	if itemID == "" {
		verrs.Add("itemId", "item id is required")
	}
	if name == "" {
		verrs.Add("name", "name is required")
	}
	if purchaseCost < 0 {
		verrs.Add("purchaseCost", "purchase cost must be zero or greater")
	}
	if saleCost < 0 {
		verrs.Add("saleCost", "sale cost must be zero or greater")
	}
	if reorderLevel < 0 {
		verrs.Add("reorderLevel", "reorder level must be zero or greater")
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	now := time.Now().UTC()
	return &Item{
		ID:           primitive.NewObjectID(),
		ItemID:       itemID,
		Name:         name,
		Type:         itemType,
		Category:     category,
		Subcategory:  subcategory,
		PurchaseCost: purchaseCost,
		SaleCost:     saleCost,
		ReorderLevel: reorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Remaining returns the quantity on hand.
func (i *Item) Remaining() float64 {
	return i.QuantityPurchased - i.QuantitySold
}

// Classification evaluates the reorder rules for the item's current stock.
func (i *Item) Classification() StockClassification {
	return ClassifyStock(i.Remaining(), i.ReorderLevel)
}

// SetReorderLevel updates the reorder threshold and returns the resulting
// classification so callers can surface new alerts immediately.
func (i *Item) SetReorderLevel(level float64) (StockClassification, error) {
	if level < 0 {
		return StockClassification{}, ErrReorderLevelNegative
	}
	i.ReorderLevel = level
	i.UpdatedAt = time.Now().UTC()
	i.raiseStockAlert()
	return i.Classification(), nil
}

// RecordPurchase increases stock from an accepted purchase order line.
func (i *Item) RecordPurchase(quantity float64) error {
	if quantity <= 0 {
		return ErrMovementNotPositive
	}
	i.QuantityPurchased += quantity
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordSale decreases stock for an accepted sales order line. Selling below
// zero is never allowed.
func (i *Item) RecordSale(quantity float64) error {
	if quantity <= 0 {
		return ErrMovementNotPositive
	}
	if quantity > i.Remaining() {
		return ErrInsufficientStock
	}
	i.QuantitySold += quantity
	i.UpdatedAt = time.Now().UTC()
	i.raiseStockAlert()
	return nil
}

// raiseStockAlert appends a StockAlertEvent when the item sits in the reorder
// or low-stock band after a change.
func (i *Item) raiseStockAlert() {
	severity := i.Classification().Severity()
	if severity == "" {
		return
	}
	i.domainEvents = append(i.domainEvents, &StockAlertEvent{
		ItemID:       i.ItemID,
		ItemName:     i.Name,
		Remaining:    i.Remaining(),
		ReorderLevel: i.ReorderLevel,
		Severity:     severity,
		DetectedAt:   time.Now().UTC(),
	})
}

// DomainEvents returns all pending domain events
func (i *Item) DomainEvents() []DomainEvent {
	return i.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (i *Item) ClearDomainEvents() {
	i.domainEvents = make([]DomainEvent, 0)
}
