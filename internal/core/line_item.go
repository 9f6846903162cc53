package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineCalculation holds the full per-item breakdown. All values are at
// full precision; callers round only when surfacing.
type LineCalculation struct {
	Base     decimal.Decimal // quantity × unit price, before discount and tax
	Discount decimal.Decimal // base × discount% / 100
	Taxable  decimal.Decimal // base − discount
	Tax      decimal.Decimal // taxable × tax% / 100
	Total    decimal.Decimal // taxable + tax
}

// CalculateLine computes the per-item breakdown for one invoice line.
//
// The cascade order is load-bearing: the discount applies to the
// undiscounted base, and tax applies to the *discounted* base. Reversing
// the order changes the taxed amount and would break compatibility with
// every previously issued invoice.
//
// Pure function, no side effects. Invalid input returns a
// ValidationError naming the offending field.
func CalculateLine(quantity int64, unitPrice, discountPercent, taxPercent decimal.Decimal) (LineCalculation, error) {
	if quantity < 1 {
		return LineCalculation{}, &ValidationError{Field: "quantity", Message: fmt.Sprintf("must be at least 1, got %d", quantity)}
	}
	if unitPrice.IsNegative() {
		return LineCalculation{}, &ValidationError{Field: "unitPrice", Message: "must not be negative"}
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return LineCalculation{}, &ValidationError{Field: "discountPercent", Message: "must be between 0 and 100"}
	}
	if taxPercent.IsNegative() {
		return LineCalculation{}, &ValidationError{Field: "taxPercent", Message: "must not be negative"}
	}

	base := decimal.NewFromInt(quantity).Mul(unitPrice)
	discount := ApplyPercent(base, discountPercent)
	taxable := base.Sub(discount)
	tax := ApplyPercent(taxable, taxPercent)

	return LineCalculation{
		Base:     base,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}, nil
}
