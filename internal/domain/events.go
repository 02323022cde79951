package domain

import "time"

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// OrderSubmittedEvent is emitted when a draft order is submitted
type OrderSubmittedEvent struct {
	OrderID        string    `json:"orderId"`
	Kind           OrderKind `json:"kind"`
	CounterpartyID string    `json:"counterpartyId"`
	GrandTotal     float64   `json:"grandTotal"`
	LineCount      int       `json:"lineCount"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func (e *OrderSubmittedEvent) EventType() string     { return "backoffice.order.submitted" }
func (e *OrderSubmittedEvent) OccurredAt() time.Time { return e.SubmittedAt }

// OrderAcceptedEvent is emitted when a submitted order is accepted
type OrderAcceptedEvent struct {
	OrderID        string    `json:"orderId"`
	Kind           OrderKind `json:"kind"`
	CounterpartyID string    `json:"counterpartyId"`
	GrandTotal     float64   `json:"grandTotal"`
	AcceptedAt     time.Time `json:"acceptedAt"`
}

func (e *OrderAcceptedEvent) EventType() string     { return "backoffice.order.accepted" }
func (e *OrderAcceptedEvent) OccurredAt() time.Time { return e.AcceptedAt }

// OrderRejectedEvent is emitted when a submitted order is rejected
type OrderRejectedEvent struct {
	OrderID    string    `json:"orderId"`
	Kind       OrderKind `json:"kind"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejectedAt"`
}

func (e *OrderRejectedEvent) EventType() string     { return "backoffice.order.rejected" }
func (e *OrderRejectedEvent) OccurredAt() time.Time { return e.RejectedAt }

// OrderSettledEvent is emitted when a payment or receipt is applied to an order
type OrderSettledEvent struct {
	OrderID     string           `json:"orderId"`
	Kind        OrderKind        `json:"kind"`
	Amount      float64          `json:"amount"`
	Outstanding float64          `json:"outstanding"`
	Status      SettlementStatus `json:"status"`
	SettledAt   time.Time        `json:"settledAt"`
}

func (e *OrderSettledEvent) EventType() string     { return "backoffice.order.settled" }
func (e *OrderSettledEvent) OccurredAt() time.Time { return e.SettledAt }

// StockAlertEvent is emitted when an accepted order pushes an item into the
// reorder or low-stock band
type StockAlertEvent struct {
	ItemID       string    `json:"itemId"`
	ItemName     string    `json:"itemName"`
	Remaining    float64   `json:"remaining"`
	ReorderLevel float64   `json:"reorderLevel"`
	Severity     string    `json:"severity"`
	DetectedAt   time.Time `json:"detectedAt"`
}

func (e *StockAlertEvent) EventType() string     { return "backoffice.stock.alert" }
func (e *StockAlertEvent) OccurredAt() time.Time { return e.DetectedAt }

// PartyDeletedEvent is emitted when a customer or supplier passes the balance
// guard and is removed
type PartyDeletedEvent struct {
	PartyID   string    `json:"partyId"`
	Kind      PartyKind `json:"kind"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (e *PartyDeletedEvent) EventType() string     { return "backoffice.party.deleted" }
func (e *PartyDeletedEvent) OccurredAt() time.Time { return e.DeletedAt }
