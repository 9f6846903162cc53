package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are the four invoice-level aggregate amounts, at full precision.
type Totals struct {
	Subtotal decimal.Decimal // Σ per-item base, pre-discount pre-tax
	Discount decimal.Decimal // Σ per-item discount
	Tax      decimal.Decimal // Σ per-item tax, each on its own discounted base
	Total    decimal.Decimal // subtotal − discount + tax
}

// ValidateItems checks the item set before aggregation and collects
// every violation into a single InvalidInvoiceError so the caller can
// report all bad items at once. An empty list is allowed only while the
// invoice is still draft (allowEmpty).
func ValidateItems(items []LineItem, allowEmpty bool) error {
	if len(items) == 0 {
		if allowEmpty {
			return nil
		}
		return &InvalidInvoiceError{Items: []error{errors.New("invoice must have at least one item")}}
	}

	var errs []error
	for i, it := range items {
		if strings.TrimSpace(it.ProductRef) == "" {
			errs = append(errs, &ItemError{Line: i + 1, Err: &ValidationError{Field: "productRef", Message: "is required"}})
		}
		if _, err := it.Calculate(); err != nil {
			errs = append(errs, &ItemError{Line: i + 1, Err: err})
		}
	}
	if len(errs) > 0 {
		return &InvalidInvoiceError{Items: errs}
	}
	return nil
}

// Aggregate sums the per-item calculator output into the invoice totals.
// Tax is summed per item on each item's own discounted base — there is
// no re-cascading across items. Idempotent and side-effect free.
func Aggregate(items []LineItem) (Totals, error) {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	for i, it := range items {
		calc, err := it.Calculate()
		if err != nil {
			return Totals{}, &InvalidInvoiceError{Items: []error{&ItemError{Line: i + 1, Err: err}}}
		}
		t.Subtotal = t.Subtotal.Add(calc.Base)
		t.Discount = t.Discount.Add(calc.Discount)
		t.Tax = t.Tax.Add(calc.Tax)
	}

	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t, nil
}
