package core

import "github.com/shopspring/decimal"

// Monetary values are carried as decimal.Decimal at full precision.
// Rounding to 2 places happens exactly once, at the point a value is
// surfaced (export or display) — intermediate sums are never rounded,
// so per-item rounding error cannot compound into the aggregates.

// RoundMoney rounds a monetary amount half-up to 2 decimal places.
// Only exporters and display layers should call this.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ApplyPercent returns base × percent / 100 at full precision.
// The divide-by-100 is a digit shift, so the result is exact.
func ApplyPercent(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Shift(-2)
}

// SafeDiv divides a by b, failing with an ArithmeticError when b is zero.
// Percentages in this engine are multiplicative, so this mainly guards
// future extensions that divide by quantities or rates.
func SafeDiv(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, &ArithmeticError{Op: "division", Reason: "divisor is zero"}
	}
	return a.Div(b), nil
}
