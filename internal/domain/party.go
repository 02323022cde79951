package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindSupplier PartyKind = "supplier"
)

// IsValid checks if the party kind is valid
func (k PartyKind) IsValid() bool {
	return k == PartyKindCustomer || k == PartyKindSupplier
}

// EntityKind returns the identifier kind used for parties of this kind.
func (k PartyKind) EntityKind() EntityKind {
	if k == PartyKindCustomer {
		return EntityKindCustomer
	}
	return EntityKindSupplier
}

// Party is a customer or supplier with a running money position.
// TotalTransacted accumulates accepted order totals (sales for customers,
// purchases for suppliers); TotalSettled accumulates receipts or payments.
type Party struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PartyID string             `bson:"partyId" json:"partyId"`
	Kind    PartyKind          `bson:"kind" json:"kind"`

	Name   string `bson:"name" json:"name"`
	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email  string `bson:"email,omitempty" json:"email,omitempty"`
	County string `bson:"county,omitempty" json:"county,omitempty"`
	Town   string `bson:"town,omitempty" json:"town,omitempty"`

	TotalTransacted float64 `bson:"totalTransacted" json:"totalTransacted"`
	TotalSettled    float64 `bson:"totalSettled" json:"totalSettled"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewParty creates a party record. All validation failures are collected.
func NewParty(partyID string, kind PartyKind, name, phone, email, county, town string) (*Party, error) {
	var verrs ValidationErrors

	if partyID == "" {
		verrs.Add("partyId", "party id is required")
	}
	if !kind.IsValid() {
		verrs.Addf("kind", "kind must be %q or %q", PartyKindCustomer, PartyKindSupplier)
	}
	if name == "" {
		verrs.Add("name", "name is required")
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	now := time.Now().UTC()
	return &Party{
		ID:        primitive.NewObjectID(),
		PartyID:   partyID,
		Kind:      kind,
		Name:      name,
		Phone:     phone,
		Email:     email,
		County:    county,
		Town:      town,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OutstandingBalance is the unsettled remainder of the party's position.
func (p *Party) OutstandingBalance() float64 {
	return p.TotalTransacted - p.TotalSettled
}

// CanDelete reports whether the party may be removed. The check runs against
// the current stored totals, never against a value the caller supplies.
func (p *Party) CanDelete() bool {
	return CanDelete(p.OutstandingBalance())
}

// RecordOrder adds an accepted order total to the party's position.
func (p *Party) RecordOrder(total float64) {
	p.TotalTransacted += total
	p.UpdatedAt = time.Now().UTC()
}

// RecordSettlement adds a payment or receipt to the party's position.
func (p *Party) RecordSettlement(amount float64) {
	p.TotalSettled += amount
	p.UpdatedAt = time.Now().UTC()
}

// UpdateContact replaces the party's contact details.
func (p *Party) UpdateContact(name, phone, email, county, town string) error {
	if name == "" {
		var verrs ValidationErrors
		verrs.Add("name", "name is required")
		return verrs
	}
	p.Name = name
	p.Phone = phone
	p.Email = email
	p.County = county
	p.Town = town
	p.UpdatedAt = time.Now().UTC()
	return nil
}
