package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionKind distinguishes payments out (to suppliers, against purchase
// orders) from receipts in (from customers, against sales orders).
type TransactionKind string

const (
	TransactionKindPayment TransactionKind = "payment"
	TransactionKindReceipt TransactionKind = "receipt"
)

// IsValid checks if the transaction kind is valid
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindPayment || k == TransactionKindReceipt
}

// OrderKind returns the order kind a transaction of this kind settles.
func (k TransactionKind) OrderKind() OrderKind {
	if k == TransactionKindPayment {
		return OrderKindPurchase
	}
	return OrderKindSale
}

// Transaction records one payment or receipt against an order.
type Transaction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Kind          TransactionKind    `bson:"kind" json:"kind"`

	OrderID   string    `bson:"orderId" json:"orderId"`
	PartyID   string    `bson:"partyId" json:"partyId"`
	Amount    float64   `bson:"amount" json:"amount"`
	Mode      string    `bson:"mode" json:"mode"`
	Date      time.Time `bson:"date" json:"date"`
	Reference string    `bson:"reference,omitempty" json:"reference,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewTransaction creates a payment or receipt record. The amount-vs-balance
// rule is enforced by the order aggregate when the transaction is applied;
// this constructor validates shape only. All failures are collected.
func NewTransaction(
	transactionID string,
	kind TransactionKind,
	orderID, partyID string,
	amount float64,
	mode string,
	date time.Time,
	reference string,
) (*Transaction, error) {
	var verrs ValidationErrors

	if transactionID == "" {
		verrs.Add("transactionId", "transaction id is required")
	}
	if !kind.IsValid() {
		verrs.Addf("kind", "kind must be %q or %q", TransactionKindPayment, TransactionKindReceipt)
	}
	if orderID == "" {
		verrs.Add("orderId", "order is required")
	}
	if partyID == "" {
		verrs.Add("partyId", "party is required")
	}
	if amount <= 0 {
		verrs.Add("amount", "amount must be greater than zero")
	}
	if mode == "" {
		verrs.Add("mode", "payment mode is required")
	}
	if date.IsZero() {
		verrs.Add("date", "date is required")
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	return &Transaction{
		ID:            primitive.NewObjectID(),
		TransactionID: transactionID,
		Kind:          kind,
		OrderID:       orderID,
		PartyID:       partyID,
		Amount:        amount,
		Mode:          mode,
		Date:          date,
		Reference:     reference,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
