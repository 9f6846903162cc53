package app

import "invoice-engine/internal/core"

// InvoiceResult is returned by invoice lifecycle operations.
type InvoiceResult struct {
	Invoice *core.Invoice
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// ArtifactResult is a rendered export artifact ready to be written to
// disk or streamed over HTTP.
type ArtifactResult struct {
	Filename    string
	ContentType string
	Data        []byte
}
