package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T) *Party {
	t.Helper()
	party, err := NewParty("CUST-00000001", PartyKindCustomer, "Jane Mwangi", "0712000000", "jane@example.com", "Nairobi", "Westlands")
	require.NoError(t, err)
	return party
}

func TestNewPartyCollectsValidationErrors(t *testing.T) {
	_, err := NewParty("", PartyKind("bogus"), "", "", "", "", "")
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := verrs.Fields()
	assert.Contains(t, fields, "partyId")
	assert.Contains(t, fields, "kind")
	assert.Contains(t, fields, "name")
}

func TestPartyOutstandingBalance(t *testing.T) {
	party := newTestCustomer(t)
	assert.Equal(t, 0.0, party.OutstandingBalance())
	assert.True(t, party.CanDelete())

	party.RecordOrder(714)
	assert.Equal(t, 714.0, party.OutstandingBalance())
	assert.False(t, party.CanDelete())

	party.RecordSettlement(714)
	assert.Equal(t, 0.0, party.OutstandingBalance())
	assert.True(t, party.CanDelete())
}

func TestPartyOverpaymentStillBlocksDelete(t *testing.T) {
	party := newTestCustomer(t)
	party.RecordOrder(100)
	party.RecordSettlement(150)

	assert.Equal(t, -50.0, party.OutstandingBalance())
	assert.False(t, party.CanDelete())
}

func TestPartyUpdateContact(t *testing.T) {
	party := newTestCustomer(t)

	require.NoError(t, party.UpdateContact("Jane M. Mwangi", "0712000001", "jane@corp.example", "Kiambu", "Ruiru"))
	assert.Equal(t, "Jane M. Mwangi", party.Name)
	assert.Equal(t, "Ruiru", party.Town)

	err := party.UpdateContact("", "", "", "", "")
	require.Error(t, err)
}
