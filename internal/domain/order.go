package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order domain errors
var (
	ErrOrderNotDraft         = errors.New("order is not in draft status")
	ErrOrderNotSubmitted     = errors.New("order is not in submitted status")
	ErrOrderNotAccepted      = errors.New("order must be accepted before settlement")
	ErrSettlementExceeds     = errors.New("settlement amount exceeds outstanding balance")
	ErrSettlementNotPositive = errors.New("settlement amount must be greater than zero")
)

// OrderKind distinguishes purchase orders (supplier side) from sales orders
// (customer side).
type OrderKind string

const (
	OrderKindPurchase OrderKind = "purchase"
	OrderKindSale     OrderKind = "sale"
)

// IsValid checks if the order kind is valid
func (k OrderKind) IsValid() bool {
	return k == OrderKindPurchase || k == OrderKindSale
}

// EntityKind returns the identifier kind used for orders of this kind.
func (k OrderKind) EntityKind() EntityKind {
	if k == OrderKindPurchase {
		return EntityKindPurchaseOrder
	}
	return EntityKindSalesOrder
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusRejected  OrderStatus = "rejected"
)

// SettlementStatus tracks how much of an order's total has been paid
// (purchases) or received (sales).
type SettlementStatus string

const (
	SettlementStatusUnpaid  SettlementStatus = "unpaid"
	SettlementStatusPartial SettlementStatus = "partial"
	SettlementStatusPaid    SettlementStatus = "paid"
)

// OrderLine is one priced line of an order.
type OrderLine struct {
	LineID         string     `bson:"lineId" json:"lineId"`
	ItemID         string     `bson:"itemId" json:"itemId"`
	ItemName       string     `bson:"itemName" json:"itemName"`
	Quantity       float64    `bson:"quantity" json:"quantity"`
	UnitCost       float64    `bson:"unitCost" json:"unitCost"`
	TaxRatePercent float64    `bson:"taxRatePercent" json:"taxRatePercent"`
	Totals         LineTotals `bson:"totals" json:"totals"`
}

// OrderTotals is the sum of all line totals, kept at full precision.
type OrderTotals struct {
	AmountExclTax float64 `bson:"amountExclTax" json:"amountExclTax"`
	TaxAmount     float64 `bson:"taxAmount" json:"taxAmount"`
	AmountInclTax float64 `bson:"amountInclTax" json:"amountInclTax"`
	Shipping      float64 `bson:"shipping" json:"shipping"`
	GrandTotal    float64 `bson:"grandTotal" json:"grandTotal"`
}

// LineInput is the raw operator input for one order line, before pricing.
type LineInput struct {
	LineID         string
	ItemID         string
	ItemName       string
	Quantity       float64
	UnitCost       float64
	TaxRatePercent float64
	Shipping       float64
}

// Order is the purchase/sales order aggregate. Counterparty is the supplier
// for purchases and the customer for sales; ReferenceNumber carries the
// supplier bill number or the issued invoice number.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID          string             `bson:"orderId" json:"orderId"`
	Kind             OrderKind          `bson:"kind" json:"kind"`
	CounterpartyID   string             `bson:"counterpartyId" json:"counterpartyId"`
	CounterpartyName string             `bson:"counterpartyName" json:"counterpartyName"`
	OrderDate        time.Time          `bson:"orderDate" json:"orderDate"`
	ReferenceNumber  string             `bson:"referenceNumber" json:"referenceNumber"`

	Lines  []OrderLine `bson:"lines" json:"lines"`
	Totals OrderTotals `bson:"totals" json:"totals"`

	// Settlement
	AmountSettled    float64          `bson:"amountSettled" json:"amountSettled"`
	SettlementStatus SettlementStatus `bson:"settlementStatus" json:"settlementStatus"`

	Status          OrderStatus `bson:"status" json:"status"`
	RejectionReason string      `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewOrder builds and prices a draft order from raw inputs. Validation is
// exhaustive: every invalid field across the header and all lines is
// collected into a single ValidationErrors result so the operator can fix
// everything in one round trip. Line totals are computed with the shipping
// policy for the order kind.
func NewOrder(
	orderID string,
	kind OrderKind,
	counterpartyID, counterpartyName string,
	orderDate time.Time,
	referenceNumber string,
	lines []LineInput,
) (*Order, error) {
	var verrs ValidationErrors

	if orderID == "" {
		verrs.Add("orderId", "order id is required")
	}
	if !kind.IsValid() {
		verrs.Addf("kind", "kind must be %q or %q", OrderKindPurchase, OrderKindSale)
	}
	if counterpartyID == "" {
		verrs.Add("counterpartyId", "counterparty is required")
	}
	if orderDate.IsZero() {
		verrs.Add("orderDate", "order date is required")
	}
	if referenceNumber == "" {
		verrs.Add("referenceNumber", "reference number is required")
	}
	if len(lines) == 0 {
		verrs.Add("lines", "at least one line is required")
	}

	calc := CalculatorFor(kind)
	priced := make([]OrderLine, 0, len(lines))
	var totals OrderTotals

	for idx, in := range lines {
		field := func(name string) string { return fmt.Sprintf("lines[%d].%s", idx, name) }

		if in.ItemID == "" {
			verrs.Add(field("itemId"), "item is required")
		}
		if in.Quantity <= 0 {
			verrs.Add(field("quantity"), "quantity must be greater than zero")
		}
		if in.UnitCost <= 0 {
			verrs.Add(field("unitCost"), "unit cost must be greater than zero")
		}
		if in.TaxRatePercent < 0 || in.TaxRatePercent > 100 {
			verrs.Add(field("taxRatePercent"), "tax rate must be between 0 and 100")
		}
		if in.Shipping < 0 {
			verrs.Add(field("shipping"), "shipping must be zero or greater")
		}

		lineTotals, err := calc.LineTotals(in.Quantity, in.UnitCost, in.TaxRatePercent, in.Shipping)
		if err != nil {
			// Field-level failures were already recorded above.
			continue
		}

		priced = append(priced, OrderLine{
			LineID:         in.LineID,
			ItemID:         in.ItemID,
			ItemName:       in.ItemName,
			Quantity:       in.Quantity,
			UnitCost:       in.UnitCost,
			TaxRatePercent: in.TaxRatePercent,
			Totals:         lineTotals,
		})

		totals.AmountExclTax += lineTotals.AmountExclTax
		totals.TaxAmount += lineTotals.TaxAmount
		totals.AmountInclTax += lineTotals.AmountInclTax
		totals.Shipping += lineTotals.Shipping
		totals.GrandTotal += lineTotals.Total
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	now := time.Now().UTC()
	order := &Order{
		ID:               primitive.NewObjectID(),
		OrderID:          orderID,
		Kind:             kind,
		CounterpartyID:   counterpartyID,
		CounterpartyName: counterpartyName,
		OrderDate:        orderDate,
		ReferenceNumber:  referenceNumber,
		Lines:            priced,
		Totals:           totals,
		AmountSettled:    0,
		SettlementStatus: SettlementStatusUnpaid,
		Status:           OrderStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
		domainEvents:     make([]DomainEvent, 0),
	}

	return order, nil
}

// Outstanding returns the unsettled remainder of the order total.
func (o *Order) Outstanding() float64 {
	return o.Totals.GrandTotal - o.AmountSettled
}

// Submit moves a draft order into the submitted state.
func (o *Order) Submit() error {
	if o.Status != OrderStatusDraft {
		return ErrOrderNotDraft
	}

	now := time.Now().UTC()
	o.Status = OrderStatusSubmitted
	o.UpdatedAt = now

	o.addDomainEvent(&OrderSubmittedEvent{
		OrderID:        o.OrderID,
		Kind:           o.Kind,
		CounterpartyID: o.CounterpartyID,
		GrandTotal:     o.Totals.GrandTotal,
		LineCount:      len(o.Lines),
		SubmittedAt:    now,
	})

	return nil
}

// Accept confirms a submitted order. Stock movements and counterparty balance
// updates happen at acceptance time, in the application layer.
func (o *Order) Accept() error {
	if o.Status != OrderStatusSubmitted {
		return ErrOrderNotSubmitted
	}

	now := time.Now().UTC()
	o.Status = OrderStatusAccepted
	o.UpdatedAt = now

	o.addDomainEvent(&OrderAcceptedEvent{
		OrderID:        o.OrderID,
		Kind:           o.Kind,
		CounterpartyID: o.CounterpartyID,
		GrandTotal:     o.Totals.GrandTotal,
		AcceptedAt:     now,
	})

	return nil
}

// Reject declines a submitted order. Lines and totals are left intact so the
// order can be corrected and resubmitted without re-entry.
func (o *Order) Reject(reason string) error {
	if o.Status != OrderStatusSubmitted {
		return ErrOrderNotSubmitted
	}

	now := time.Now().UTC()
	o.Status = OrderStatusRejected
	o.RejectionReason = reason
	o.UpdatedAt = now

	o.addDomainEvent(&OrderRejectedEvent{
		OrderID:    o.OrderID,
		Kind:       o.Kind,
		Reason:     reason,
		RejectedAt: now,
	})

	return nil
}

// Reopen returns a rejected order to draft so it can be corrected.
func (o *Order) Reopen() error {
	if o.Status != OrderStatusRejected {
		return errors.New("only rejected orders can be reopened")
	}
	o.Status = OrderStatusDraft
	o.RejectionReason = ""
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplySettlement records a payment (purchases) or receipt (sales) against
// the order. The amount may never exceed the outstanding balance.
func (o *Order) ApplySettlement(amount float64) error {
	if o.Status != OrderStatusAccepted {
		return ErrOrderNotAccepted
	}
	if amount <= 0 {
		return ErrSettlementNotPositive
	}
	if amount > o.Outstanding() {
		return ErrSettlementExceeds
	}

	o.AmountSettled += amount
	o.SettlementStatus = deriveSettlementStatus(o.AmountSettled, o.Totals.GrandTotal)
	o.UpdatedAt = time.Now().UTC()

	o.addDomainEvent(&OrderSettledEvent{
		OrderID:     o.OrderID,
		Kind:        o.Kind,
		Amount:      amount,
		Outstanding: o.Outstanding(),
		Status:      o.SettlementStatus,
		SettledAt:   o.UpdatedAt,
	})

	return nil
}

func deriveSettlementStatus(settled, grandTotal float64) SettlementStatus {
	switch {
	case settled <= 0:
		return SettlementStatusUnpaid
	case settled < grandTotal:
		return SettlementStatusPartial
	default:
		return SettlementStatusPaid
	}
}

// Domain event helpers
func (o *Order) addDomainEvent(event DomainEvent) {
	o.domainEvents = append(o.domainEvents, event)
}

// DomainEvents returns all pending domain events
func (o *Order) DomainEvents() []DomainEvent {
	return o.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (o *Order) ClearDomainEvents() {
	o.domainEvents = make([]DomainEvent, 0)
}
