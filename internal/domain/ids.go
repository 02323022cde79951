package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind identifies the record types that receive server-issued IDs.
type EntityKind string

const (
	EntityKindCustomer      EntityKind = "customer"
	EntityKindSupplier      EntityKind = "supplier"
	EntityKindItem          EntityKind = "item"
	EntityKindPurchaseOrder EntityKind = "purchase_order"
	EntityKindSalesOrder    EntityKind = "sales_order"
	EntityKindOrderLine     EntityKind = "order_line"
	EntityKindPayment       EntityKind = "payment"
	EntityKindReceipt       EntityKind = "receipt"
)

// IsValid checks if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindCustomer, EntityKindSupplier, EntityKindItem,
		EntityKindPurchaseOrder, EntityKindSalesOrder, EntityKindOrderLine,
		EntityKindPayment, EntityKindReceipt:
		return true
	}
	return false
}

var idPrefixes = map[EntityKind]string{
	EntityKindCustomer:      "CUST",
	EntityKindSupplier:      "SUPP",
	EntityKindItem:          "ITEM",
	EntityKindPurchaseOrder: "PO",
	EntityKindSalesOrder:    "SO",
	EntityKindOrderLine:     "DET",
	EntityKindPayment:       "PAY",
	EntityKindReceipt:       "RCT",
}

// IDGenerator issues identifiers for new records. Callers treat the returned
// value as opaque: it is never parsed or recomposed downstream.
type IDGenerator interface {
	NextID(kind EntityKind) (string, error)
}

// UUIDGenerator issues prefixed random identifiers.
type UUIDGenerator struct{}

// NewUUIDGenerator creates the default generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NextID returns a new identifier for the given kind.
func (g *UUIDGenerator) NextID(kind EntityKind) (string, error) {
	prefix, ok := idPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8]), nil
}
