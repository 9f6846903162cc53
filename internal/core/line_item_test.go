package core_test

import (
	"errors"
	"testing"

	"invoice-engine/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateLine_CascadeOrder(t *testing.T) {
	// Reference scenario: qty=2, price=100.00, discount=10%, tax=5%.
	// Discount applies to the undiscounted base; tax applies to the
	// discounted base. The reverse order would give a different total.
	calc, err := core.CalculateLine(2, dec("100.00"), dec("10"), dec("5"))
	if err != nil {
		t.Fatalf("CalculateLine failed: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"base", calc.Base, "200.00"},
		{"discount", calc.Discount, "20.00"},
		{"taxable", calc.Taxable, "180.00"},
		{"tax", calc.Tax, "9.00"},
		{"total", calc.Total, "189.00"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s: got %s, want %s", c.name, c.got, c.want)
		}
	}

	// lineTotal == (qty*price - qty*price*d/100) * (1 + t/100), exactly.
	base := dec("100.00").Mul(decimal.NewFromInt(2))
	taxable := base.Sub(base.Mul(dec("10")).Div(decimal.NewFromInt(100)))
	expected := taxable.Mul(decimal.NewFromInt(1).Add(dec("5").Div(decimal.NewFromInt(100))))
	if !calc.Total.Equal(expected) {
		t.Errorf("cascade total: got %s, want %s", calc.Total, expected)
	}
}

func TestCalculateLine_SecondReferenceItem(t *testing.T) {
	// qty=1, price=50.00, discount=0%, tax=8% → 54.00
	calc, err := core.CalculateLine(1, dec("50.00"), decimal.Zero, dec("8"))
	if err != nil {
		t.Fatalf("CalculateLine failed: %v", err)
	}
	if !calc.Total.Equal(dec("54.00")) {
		t.Errorf("total: got %s, want 54.00", calc.Total)
	}
}

func TestCalculateLine_Validation(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int64
		unitPrice string
		discount  string
		tax       string
		wantField string
	}{
		{"zero quantity", 0, "10.00", "0", "0", "quantity"},
		{"negative quantity", -3, "10.00", "0", "0", "quantity"},
		{"negative price", 1, "-0.01", "0", "0", "unitPrice"},
		{"negative discount", 1, "10.00", "-1", "0", "discountPercent"},
		{"discount above 100", 1, "10.00", "100.01", "0", "discountPercent"},
		{"negative tax", 1, "10.00", "0", "-5", "taxPercent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := core.CalculateLine(tc.quantity, dec(tc.unitPrice), dec(tc.discount), dec(tc.tax))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("field: got %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestCalculateLine_Boundaries(t *testing.T) {
	// 100% discount zeroes the taxable base and therefore the tax,
	// regardless of the tax rate.
	calc, err := core.CalculateLine(3, dec("19.99"), dec("100"), dec("27"))
	if err != nil {
		t.Fatalf("CalculateLine failed: %v", err)
	}
	if !calc.Taxable.IsZero() {
		t.Errorf("taxable: got %s, want 0", calc.Taxable)
	}
	if !calc.Tax.IsZero() {
		t.Errorf("tax: got %s, want 0", calc.Tax)
	}
	if !calc.Total.IsZero() {
		t.Errorf("total: got %s, want 0", calc.Total)
	}

	// Zero price is valid: everything downstream is zero.
	calc, err = core.CalculateLine(5, decimal.Zero, dec("10"), dec("23"))
	if err != nil {
		t.Fatalf("CalculateLine with zero price failed: %v", err)
	}
	if !calc.Total.IsZero() {
		t.Errorf("total for free item: got %s, want 0", calc.Total)
	}

	// Tax rates above 100% are legal; tax regimes vary.
	calc, err = core.CalculateLine(1, dec("100.00"), decimal.Zero, dec("150"))
	if err != nil {
		t.Fatalf("CalculateLine with 150%% tax failed: %v", err)
	}
	if !calc.Total.Equal(dec("250.00")) {
		t.Errorf("total with 150%% tax: got %s, want 250.00", calc.Total)
	}
}

func TestCalculateLine_FractionalPercentPrecision(t *testing.T) {
	// 7 × 3.33 at 12.5% discount, 6.25% tax. Intermediates keep full
	// precision; only the surfaced value is rounded.
	calc, err := core.CalculateLine(7, dec("3.33"), dec("12.5"), dec("6.25"))
	if err != nil {
		t.Fatalf("CalculateLine failed: %v", err)
	}

	base := dec("23.31")
	if !calc.Base.Equal(base) {
		t.Fatalf("base: got %s, want %s", calc.Base, base)
	}
	discount := dec("2.913750") // 23.31 × 0.125, unrounded
	if !calc.Discount.Equal(discount) {
		t.Errorf("discount: got %s, want %s", calc.Discount, discount)
	}
	if got := core.RoundMoney(calc.Discount); !got.Equal(dec("2.91")) {
		t.Errorf("surfaced discount: got %s, want 2.91", got)
	}
}
