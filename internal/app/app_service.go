package app

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-engine/internal/core"
	"invoice-engine/internal/export"
)

type appService struct {
	invoices  core.InvoiceService
	renderers map[string]export.Renderer
}

// NewAppService constructs an appService that satisfies ApplicationService.
// renderers maps format keys ("pdf", "xlsx", "xml") to their renderer.
func NewAppService(invoices core.InvoiceService, renderers map[string]export.Renderer) ApplicationService {
	return &appService{invoices: invoices, renderers: renderers}
}

// parseItem converts the string-typed request fields into a core input.
// Empty percent fields mean zero.
func parseItem(in ItemRequest) (core.ItemInput, error) {
	out := core.ItemInput{
		ProductRef:  in.ProductRef,
		Description: in.Description,
		Quantity:    in.Quantity,
	}

	price, err := decimal.NewFromString(strings.TrimSpace(in.UnitPrice))
	if err != nil {
		return out, &core.ValidationError{Field: "unitPrice", Message: fmt.Sprintf("invalid decimal %q", in.UnitPrice)}
	}
	out.UnitPrice = price

	out.DiscountPercent, err = parsePercent("discountPercent", in.DiscountPercent)
	if err != nil {
		return out, err
	}
	out.TaxPercent, err = parsePercent("taxPercent", in.TaxPercent)
	if err != nil {
		return out, err
	}
	return out, nil
}

func parsePercent(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Message: fmt.Sprintf("invalid decimal %q", raw)}
	}
	return d, nil
}

// resolveInvoice accepts either a numeric ID or an invoice number.
func (s *appService) resolveInvoice(ctx context.Context, ref string) (*core.Invoice, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.invoices.GetInvoice(ctx, id)
	}
	return s.invoices.GetInvoiceByNumber(ctx, ref)
}

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	input := core.CreateInvoiceInput{
		CustomerRef:   req.CustomerRef,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		OrderRef:      req.OrderRef,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	for _, it := range req.Items {
		parsed, err := parseItem(it)
		if err != nil {
			return nil, err
		}
		input.Items = append(input.Items, parsed)
	}

	inv, err := s.invoices.CreateInvoice(ctx, input)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error) {
	var filter *core.Status
	if status != "" {
		st := core.Status(status)
		if !st.Valid() {
			return nil, &core.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		}
		filter = &st
	}

	invoices, err := s.invoices.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) AddItem(ctx context.Context, ref string, item ItemRequest) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	input, err := parseItem(item)
	if err != nil {
		return nil, err
	}
	inv, err = s.invoices.AddItem(ctx, inv.ID, input)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) UpdateItem(ctx context.Context, ref string, lineNumber int, item ItemRequest) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	input, err := parseItem(item)
	if err != nil {
		return nil, err
	}
	inv, err = s.invoices.UpdateItem(ctx, inv.ID, lineNumber, input)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) RemoveItem(ctx context.Context, ref string, lineNumber int) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err = s.invoices.RemoveItem(ctx, inv.ID, lineNumber)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

// lifecycle applies fn to the resolved invoice.
func (s *appService) lifecycle(ctx context.Context, ref string, fn func(ctx context.Context, id int) (*core.Invoice, error)) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err = fn(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) IssueInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	return s.lifecycle(ctx, ref, s.invoices.Issue)
}

func (s *appService) SendInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	return s.lifecycle(ctx, ref, s.invoices.MarkSent)
}

func (s *appService) RecordPayment(ctx context.Context, ref string) (*InvoiceResult, error) {
	return s.lifecycle(ctx, ref, s.invoices.MarkPaid)
}

func (s *appService) CancelInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	return s.lifecycle(ctx, ref, s.invoices.Cancel)
}

func (s *appService) ExportInvoice(ctx context.Context, ref, format string) (*ArtifactResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, &core.ValidationError{Field: "format", Message: fmt.Sprintf("unknown export format %q", format)}
	}

	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}

	// The fiscal document identifies itself by the invoice number, so a
	// draft has nothing to serialize.
	if format == "xml" && inv.Number == "" {
		return nil, &core.ValidationError{Field: "number", Message: "fiscal XML export requires an issued invoice"}
	}

	var buf bytes.Buffer
	if err := renderer.Render(inv, &buf); err != nil {
		return nil, err
	}

	stem := inv.Number
	if stem == "" {
		stem = fmt.Sprintf("draft-%d", inv.ID)
	}

	return &ArtifactResult{
		Filename:    export.Filename(stem, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
