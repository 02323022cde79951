package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pricing errors
var (
	ErrQuantityNotPositive = fmt.Errorf("quantity must be greater than zero")
	ErrUnitCostNotPositive = fmt.Errorf("unit cost must be greater than zero")
	ErrTaxRateOutOfRange   = fmt.Errorf("tax rate must be between 0 and 100")
	ErrShippingNegative    = fmt.Errorf("shipping must be zero or greater")
)

// LineTotals holds the derived monetary amounts for a single order line.
// All amounts are kept at full float64 precision; rounding to cents happens
// only when totals cross a serialization boundary.
type LineTotals struct {
	AmountExclTax float64 `bson:"amountExclTax" json:"amountExclTax"`
	TaxAmount     float64 `bson:"taxAmount" json:"taxAmount"`
	AmountInclTax float64 `bson:"amountInclTax" json:"amountInclTax"`
	Shipping      float64 `bson:"shipping" json:"shipping"`
	Total         float64 `bson:"total" json:"total"`
}

// ShippingPolicy determines the shipping charge for a line. Purchase orders
// compute it as a percentage of the tax-inclusive amount; sales orders take
// the operator-entered value as-is.
type ShippingPolicy interface {
	ShippingCost(amountInclTax, entered float64) (float64, error)
}

// PercentShippingPolicy charges a fixed percentage of the tax-inclusive amount.
type PercentShippingPolicy struct {
	Percent float64
}

func (p PercentShippingPolicy) ShippingCost(amountInclTax, _ float64) (float64, error) {
	return amountInclTax * (p.Percent / 100), nil
}

// ManualShippingPolicy passes through the entered shipping charge.
type ManualShippingPolicy struct{}

func (ManualShippingPolicy) ShippingCost(_, entered float64) (float64, error) {
	if entered < 0 {
		return 0, ErrShippingNegative
	}
	return entered, nil
}

// ShippingPolicyFor returns the shipping policy used for an order kind.
func ShippingPolicyFor(kind OrderKind) ShippingPolicy {
	if kind == OrderKindPurchase {
		return PercentShippingPolicy{Percent: 1}
	}
	return ManualShippingPolicy{}
}

// PriceCalculator derives line totals from raw line inputs.
type PriceCalculator struct {
	shipping ShippingPolicy
}

// NewPriceCalculator creates a calculator with the given shipping policy.
func NewPriceCalculator(shipping ShippingPolicy) *PriceCalculator {
	return &PriceCalculator{shipping: shipping}
}

// CalculatorFor returns a calculator wired for an order kind.
func CalculatorFor(kind OrderKind) *PriceCalculator {
	return NewPriceCalculator(ShippingPolicyFor(kind))
}

// LineTotals computes the full set of amounts for one line. enteredShipping is
// only consulted under a manual shipping policy. The same inputs always yield
// bit-identical outputs.
func (c *PriceCalculator) LineTotals(quantity, unitCost, taxRatePercent, enteredShipping float64) (LineTotals, error) {
	if quantity <= 0 {
		return LineTotals{}, ErrQuantityNotPositive
	}
	if unitCost <= 0 {
		return LineTotals{}, ErrUnitCostNotPositive
	}
	if taxRatePercent < 0 || taxRatePercent > 100 {
		return LineTotals{}, ErrTaxRateOutOfRange
	}

	excl := quantity * unitCost
	tax := excl * (taxRatePercent / 100)
	incl := excl + tax

	shipping, err := c.shipping.ShippingCost(incl, enteredShipping)
	if err != nil {
		return LineTotals{}, err
	}

	return LineTotals{
		AmountExclTax: excl,
		TaxAmount:     tax,
		AmountInclTax: incl,
		Shipping:      shipping,
		Total:         incl + shipping,
	}, nil
}

// ParseTaxRate parses an operator-entered tax rate. Inputs carrying a percent
// sign are rejected outright rather than stripped, so "10%" never silently
// becomes 10.
func ParseTaxRate(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("tax rate is required")
	}
	if strings.Contains(trimmed, "%") {
		return 0, fmt.Errorf("tax rate must be a plain number, without a percent sign")
	}

	rate, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("tax rate %q is not a number", input)
	}
	if rate < 0 || rate > 100 {
		return 0, ErrTaxRateOutOfRange
	}
	return rate, nil
}

// Round2 rounds a monetary amount to two decimals, half away from zero.
// Used at serialization boundaries only.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
