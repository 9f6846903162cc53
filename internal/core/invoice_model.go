package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the invoice lifecycle state. See lifecycle.go for the
// allowed transitions.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Invoice is the aggregate root. The four monetary aggregate fields are
// derived from Items and recomputed on every load and every item edit —
// a stored aggregate is never trusted.
type Invoice struct {
	ID     int    `json:"id"`
	Number string `json:"number"` // assigned exactly once at issuance, immutable thereafter

	CustomerRef   string `json:"customer_ref"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	OrderRef      string `json:"order_ref,omitempty"`

	IssueDate string `json:"issue_date"`          // YYYY-MM-DD
	DueDate   string `json:"due_date,omitempty"`  // YYYY-MM-DD, optional

	Status Status     `json:"status"`
	Items  []LineItem `json:"items"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`

	Notes string `json:"notes,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// LineItem is one priced entry on an invoice. LineTotal is derived and
// must always equal the calculator output for the current inputs.
type LineItem struct {
	ID              int             `json:"id"`
	InvoiceID       int             `json:"invoice_id"`
	LineNumber      int             `json:"line_number"`
	ProductRef      string          `json:"product_ref"`
	Description     string          `json:"description"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Calculate runs the line calculator over the item's current inputs.
func (it *LineItem) Calculate() (LineCalculation, error) {
	return CalculateLine(it.Quantity, it.UnitPrice, it.DiscountPercent, it.TaxPercent)
}

// Recalculate refreshes every derived field on the invoice: each item's
// LineTotal and the four aggregate amounts. It must be called after any
// item mutation and after loading from storage.
func (inv *Invoice) Recalculate() error {
	for i := range inv.Items {
		calc, err := inv.Items[i].Calculate()
		if err != nil {
			return &InvalidInvoiceError{Items: []error{&ItemError{Line: i + 1, Err: err}}}
		}
		inv.Items[i].LineTotal = calc.Total
	}

	totals, err := Aggregate(inv.Items)
	if err != nil {
		return err
	}
	inv.Subtotal = totals.Subtotal
	inv.DiscountAmount = totals.Discount
	inv.TaxAmount = totals.Tax
	inv.TotalAmount = totals.Total
	return nil
}
