package domain

// ReferenceKind names a dimension set served to entry screens.
type ReferenceKind string

const (
	ReferenceKindItemTypes     ReferenceKind = "item_types"
	ReferenceKindCategories    ReferenceKind = "categories"
	ReferenceKindSubcategories ReferenceKind = "subcategories"
	ReferenceKindCounties      ReferenceKind = "counties"
	ReferenceKindTowns         ReferenceKind = "towns"
	ReferenceKindPaymentModes  ReferenceKind = "payment_modes"
)

// IsValid checks if the reference kind is valid
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindItemTypes, ReferenceKindCategories, ReferenceKindSubcategories,
		ReferenceKindCounties, ReferenceKindTowns, ReferenceKindPaymentModes:
		return true
	}
	return false
}

// ReferenceEntry is one value in a dimension set. Parent scopes hierarchical
// sets (categories under a type, towns under a county); it is empty for flat
// sets.
type ReferenceEntry struct {
	Kind   ReferenceKind `bson:"kind" json:"kind"`
	Value  string        `bson:"value" json:"value"`
	Parent string        `bson:"parent,omitempty" json:"parent,omitempty"`
}
