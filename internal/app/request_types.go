package app

// CreateInvoiceRequest is the input for creating a new draft invoice.
// Dates are YYYY-MM-DD strings; empty means unset.
type CreateInvoiceRequest struct {
	CustomerRef   string
	CustomerName  string
	CustomerEmail string
	OrderRef      string
	IssueDate     string
	DueDate       string
	Notes         string
	Items         []ItemRequest
}

// ItemRequest is a single line within a CreateInvoiceRequest or an item
// edit. Monetary and percentage fields are decimal strings ("100.00",
// "7.5"); they are parsed with shopspring/decimal, never as floats.
type ItemRequest struct {
	ProductRef      string
	Description     string
	Quantity        int64
	UnitPrice       string
	DiscountPercent string // empty means 0
	TaxPercent      string // empty means 0
}
