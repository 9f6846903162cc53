package export

import (
	"invoice-engine/internal/core"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is fixed for every export format; issuer settings do
// not override it.
const CurrencySymbol = "R$"

// All three exporters format monetary values through this file, never
// on their own. Sharing one formatter is what guarantees that the PDF,
// the workbook and the fiscal XML surface byte-identical numbers.

// Money formats a monetary amount with exactly 2 decimal places,
// rounding half-up. This is the single final-rounding step for
// surfaced currency values.
func Money(d decimal.Decimal) string {
	return core.RoundMoney(d).StringFixed(2)
}

// Currency prefixes Money with the fixed currency symbol.
func Currency(d decimal.Decimal) string {
	return CurrencySymbol + " " + Money(d)
}

// Quantity4 formats a quantity with the 4 decimal places the fiscal
// schema mandates.
func Quantity4(q int64) string {
	return decimal.NewFromInt(q).StringFixed(4)
}

// Price10 formats a unit price with the 10 decimal places the fiscal
// schema mandates.
func Price10(d decimal.Decimal) string {
	return d.StringFixed(10)
}

// Percent formats a percentage for display, trimming trailing zeros.
func Percent(d decimal.Decimal) string {
	return d.String() + "%"
}

// DateOrNA returns the date string or "N/A" when unset.
func DateOrNA(date string) string {
	if date == "" {
		return "N/A"
	}
	return date
}

// OrNA returns the value or "N/A" when empty.
func OrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

var statusLabels = map[core.Status]string{
	core.StatusDraft:     "Draft",
	core.StatusIssued:    "Issued",
	core.StatusSent:      "Sent",
	core.StatusPaid:      "Paid",
	core.StatusCancelled: "Cancelled",
}

// StatusLabel returns the human-facing label for a status.
func StatusLabel(s core.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
