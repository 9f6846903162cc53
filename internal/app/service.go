package app

import "context"

// ApplicationService is the single interface all adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreateInvoice creates a new draft invoice. Item money fields arrive
	// as decimal strings and are parsed here, so adapters never touch
	// floating point.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)

	// GetInvoice returns a single invoice. ref may be a numeric ID or an
	// assigned invoice number.
	GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error)

	// ListInvoices returns all invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error)

	// AddItem appends a line item to a draft invoice.
	AddItem(ctx context.Context, ref string, item ItemRequest) (*InvoiceResult, error)

	// UpdateItem replaces the line item at the given line number.
	UpdateItem(ctx context.Context, ref string, lineNumber int, item ItemRequest) (*InvoiceResult, error)

	// RemoveItem deletes the line item at the given line number.
	RemoveItem(ctx context.Context, ref string, lineNumber int) (*InvoiceResult, error)

	// IssueInvoice transitions a draft to issued, assigning the invoice
	// number exactly once. Re-issuing an issued invoice is a no-op.
	IssueInvoice(ctx context.Context, ref string) (*InvoiceResult, error)

	// SendInvoice transitions an issued invoice to sent.
	SendInvoice(ctx context.Context, ref string) (*InvoiceResult, error)

	// RecordPayment transitions a sent invoice to paid.
	RecordPayment(ctx context.Context, ref string) (*InvoiceResult, error)

	// CancelInvoice transitions any non-terminal invoice to cancelled.
	CancelInvoice(ctx context.Context, ref string) (*InvoiceResult, error)

	// ExportInvoice renders the invoice in the given format ("pdf",
	// "xlsx" or "xml") and returns the artifact bytes. The fiscal XML
	// format requires an assigned invoice number.
	ExportInvoice(ctx context.Context, ref, format string) (*ArtifactResult, error)
}
