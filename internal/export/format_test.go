package export_test

import (
	"testing"

	"invoice-engine/internal/core"
	"invoice-engine/internal/export"
)

func TestMoney_FinalRounding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"243", "243.00"},
		{"2.913750", "2.91"},
		{"2.915", "2.92"},
		{"0", "0.00"},
	}
	for _, tc := range tests {
		if got := export.Money(dec(tc.in)); got != tc.want {
			t.Errorf("Money(%s): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCurrency(t *testing.T) {
	if got := export.Currency(dec("1234.5")); got != "R$ 1234.50" {
		t.Errorf("Currency: got %q", got)
	}
}

func TestFixedWidths(t *testing.T) {
	if got := export.Quantity4(2); got != "2.0000" {
		t.Errorf("Quantity4: got %q", got)
	}
	if got := export.Price10(dec("100.00")); got != "100.0000000000" {
		t.Errorf("Price10: got %q", got)
	}
}

func TestDateAndStatusLabels(t *testing.T) {
	if got := export.DateOrNA(""); got != "N/A" {
		t.Errorf("DateOrNA empty: got %q", got)
	}
	if got := export.DateOrNA("2026-02-01"); got != "2026-02-01" {
		t.Errorf("DateOrNA: got %q", got)
	}
	labels := map[core.Status]string{
		core.StatusDraft:     "Draft",
		core.StatusIssued:    "Issued",
		core.StatusSent:      "Sent",
		core.StatusPaid:      "Paid",
		core.StatusCancelled: "Cancelled",
	}
	for s, want := range labels {
		if got := export.StatusLabel(s); got != want {
			t.Errorf("StatusLabel(%s): got %q, want %q", s, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := export.Percent(dec("10")); got != "10%" {
		t.Errorf("Percent: got %q", got)
	}
	if got := export.Percent(dec("7.5")); got != "7.5%" {
		t.Errorf("Percent: got %q", got)
	}
}
