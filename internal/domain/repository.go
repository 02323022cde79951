package domain

import (
	"context"
	"time"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Save persists an order
	Save(ctx context.Context, order *Order) error

	// FindByID retrieves an order by ID
	FindByID(ctx context.Context, orderID string) (*Order, error)

	// FindByKind retrieves orders of a kind
	FindByKind(ctx context.Context, kind OrderKind, pagination Pagination) ([]*Order, error)

	// FindByCounterparty retrieves orders for a counterparty
	FindByCounterparty(ctx context.Context, counterpartyID string, pagination Pagination) ([]*Order, error)

	// FindByFilter retrieves orders matching a filter
	FindByFilter(ctx context.Context, filter OrderFilter, pagination Pagination) ([]*Order, error)

	// CountOpenByItem counts non-rejected orders referencing an item
	CountOpenByItem(ctx context.Context, itemID string) (int64, error)

	// Count returns total count matching filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}

// PartyRepository defines the interface for customer/supplier persistence
type PartyRepository interface {
	// Save persists a party
	Save(ctx context.Context, party *Party) error

	// FindByID retrieves a party by ID
	FindByID(ctx context.Context, partyID string) (*Party, error)

	// FindByKind retrieves parties of a kind
	FindByKind(ctx context.Context, kind PartyKind, pagination Pagination) ([]*Party, error)

	// Delete removes a party. The balance guard runs before this is called,
	// against freshly loaded totals.
	Delete(ctx context.Context, partyID string) error

	// Count returns the number of parties of a kind
	Count(ctx context.Context, kind PartyKind) (int64, error)
}

// ItemRepository defines the interface for inventory item persistence
type ItemRepository interface {
	// Save persists an item
	Save(ctx context.Context, item *Item) error

	// FindByID retrieves an item by ID
	FindByID(ctx context.Context, itemID string) (*Item, error)

	// FindAll retrieves items
	FindAll(ctx context.Context, pagination Pagination) ([]*Item, error)

	// FindBelowReorderLevel retrieves items whose remaining stock is below
	// their low-stock threshold (reorder level times the low-stock factor)
	FindBelowReorderLevel(ctx context.Context) ([]*Item, error)

	// Delete removes an item
	Delete(ctx context.Context, itemID string) error

	// Count returns the number of items
	Count(ctx context.Context) (int64, error)
}

// TransactionRepository defines the interface for payment/receipt persistence
type TransactionRepository interface {
	// Save persists a transaction
	Save(ctx context.Context, tx *Transaction) error

	// FindByID retrieves a transaction by ID
	FindByID(ctx context.Context, transactionID string) (*Transaction, error)

	// FindByOrder retrieves transactions against an order
	FindByOrder(ctx context.Context, orderID string) ([]*Transaction, error)

	// FindByKind retrieves transactions of a kind
	FindByKind(ctx context.Context, kind TransactionKind, pagination Pagination) ([]*Transaction, error)
}

// ReferenceRepository defines the interface for dimension set persistence
type ReferenceRepository interface {
	// FindByKind retrieves all entries of a dimension set
	FindByKind(ctx context.Context, kind ReferenceKind) ([]ReferenceEntry, error)

	// FindByKindAndParent retrieves entries scoped to a parent value
	FindByKindAndParent(ctx context.Context, kind ReferenceKind, parent string) ([]ReferenceEntry, error)

	// Save persists an entry
	Save(ctx context.Context, entry ReferenceEntry) error
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// OrderFilter represents filter options for querying orders
type OrderFilter struct {
	Kind             *OrderKind
	CounterpartyID   *string
	Status           *OrderStatus
	SettlementStatus *SettlementStatus
	FromDate         *time.Time
	ToDate           *time.Time
}
