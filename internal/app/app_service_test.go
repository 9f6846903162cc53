package app_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"invoice-engine/internal/app"
	"invoice-engine/internal/core"
	"invoice-engine/internal/export"
)

// fakeInvoiceService records inputs and returns canned invoices, so the
// facade can be tested without a database.
type fakeInvoiceService struct {
	core.InvoiceService

	created  *core.CreateInvoiceInput
	added    *core.ItemInput
	invoice  *core.Invoice
	listed   *core.Status
	issuedID int
}

func (f *fakeInvoiceService) CreateInvoice(ctx context.Context, input core.CreateInvoiceInput) (*core.Invoice, error) {
	f.created = &input
	return f.invoice, nil
}

func (f *fakeInvoiceService) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	if f.invoice == nil || f.invoice.ID != id {
		return nil, errors.New("invoice not found")
	}
	return f.invoice, nil
}

func (f *fakeInvoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*core.Invoice, error) {
	if f.invoice == nil || f.invoice.Number != number {
		return nil, errors.New("invoice not found")
	}
	return f.invoice, nil
}

func (f *fakeInvoiceService) ListInvoices(ctx context.Context, status *core.Status) ([]core.Invoice, error) {
	f.listed = status
	return nil, nil
}

func (f *fakeInvoiceService) AddItem(ctx context.Context, invoiceID int, input core.ItemInput) (*core.Invoice, error) {
	f.added = &input
	return f.invoice, nil
}

func (f *fakeInvoiceService) Issue(ctx context.Context, invoiceID int) (*core.Invoice, error) {
	f.issuedID = invoiceID
	return f.invoice, nil
}

type stubRenderer struct {
	ext     string
	ct      string
	payload string
}

func (r *stubRenderer) Render(inv *core.Invoice, w io.Writer) error {
	_, err := io.WriteString(w, r.payload)
	return err
}

func (r *stubRenderer) Extension() string   { return r.ext }
func (r *stubRenderer) ContentType() string { return r.ct }

func newFacade(inv *core.Invoice) (app.ApplicationService, *fakeInvoiceService) {
	fake := &fakeInvoiceService{invoice: inv}
	renderers := map[string]export.Renderer{
		"pdf": &stubRenderer{ext: "pdf", ct: "application/pdf", payload: "%PDF-stub"},
		"xml": &stubRenderer{ext: "xml", ct: "application/xml", payload: "<NFe/>"},
	}
	return app.NewAppService(fake, renderers), fake
}

func TestCreateInvoice_ParsesDecimalStrings(t *testing.T) {
	svc, fake := newFacade(&core.Invoice{ID: 7})

	_, err := svc.CreateInvoice(context.Background(), app.CreateInvoiceRequest{
		CustomerRef: "CUST-1",
		Items: []app.ItemRequest{
			{Description: "Widget", Quantity: 2, UnitPrice: "100.00", DiscountPercent: "10", TaxPercent: "5"},
			{Description: "Gadget", Quantity: 1, UnitPrice: "50.00"},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if fake.created == nil || len(fake.created.Items) != 2 {
		t.Fatalf("service received %+v", fake.created)
	}

	first := fake.created.Items[0]
	if !first.UnitPrice.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("unit price: got %s", first.UnitPrice)
	}
	if !first.DiscountPercent.Equal(decimal.RequireFromString("10")) {
		t.Errorf("discount: got %s", first.DiscountPercent)
	}

	// Empty percent strings mean zero.
	second := fake.created.Items[1]
	if !second.DiscountPercent.IsZero() || !second.TaxPercent.IsZero() {
		t.Errorf("empty percents should parse to zero, got %s / %s", second.DiscountPercent, second.TaxPercent)
	}
}

func TestCreateInvoice_RejectsBadDecimal(t *testing.T) {
	svc, fake := newFacade(&core.Invoice{ID: 7})

	_, err := svc.CreateInvoice(context.Background(), app.CreateInvoiceRequest{
		CustomerRef: "CUST-1",
		Items:       []app.ItemRequest{{Quantity: 1, UnitPrice: "1,23"}},
	})

	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "unitPrice" {
		t.Errorf("field: got %q", vErr.Field)
	}
	if fake.created != nil {
		t.Error("service must not be called with unparseable input")
	}
}

func TestListInvoices_StatusFilter(t *testing.T) {
	svc, fake := newFacade(nil)

	if _, err := svc.ListInvoices(context.Background(), "issued"); err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if fake.listed == nil || *fake.listed != core.StatusIssued {
		t.Errorf("filter: got %v", fake.listed)
	}

	if _, err := svc.ListInvoices(context.Background(), "bogus"); err == nil {
		t.Error("unknown status must be rejected")
	}
}

func TestIssueInvoice_ResolvesNumberRef(t *testing.T) {
	svc, fake := newFacade(&core.Invoice{ID: 42, Number: "INV-000042", Status: core.StatusIssued})

	result, err := svc.IssueInvoice(context.Background(), "INV-000042")
	if err != nil {
		t.Fatalf("IssueInvoice: %v", err)
	}
	if fake.issuedID != 42 {
		t.Errorf("issued ID: got %d, want 42", fake.issuedID)
	}
	if result.Invoice.Number != "INV-000042" {
		t.Errorf("number: got %q", result.Invoice.Number)
	}
}

func TestExportInvoice(t *testing.T) {
	issued := &core.Invoice{ID: 3, Number: "INV-000003", Status: core.StatusIssued}
	svc, _ := newFacade(issued)

	artifact, err := svc.ExportInvoice(context.Background(), "3", "pdf")
	if err != nil {
		t.Fatalf("ExportInvoice: %v", err)
	}
	if artifact.Filename != "invoice-INV-000003.pdf" {
		t.Errorf("filename: got %q", artifact.Filename)
	}
	if artifact.ContentType != "application/pdf" {
		t.Errorf("content type: got %q", artifact.ContentType)
	}
	if string(artifact.Data) != "%PDF-stub" {
		t.Errorf("data: got %q", artifact.Data)
	}

	if _, err := svc.ExportInvoice(context.Background(), "3", "docx"); err == nil {
		t.Error("unknown format must be rejected")
	}
}

func TestExportInvoice_DraftRules(t *testing.T) {
	draft := &core.Invoice{ID: 9, Status: core.StatusDraft}
	svc, _ := newFacade(draft)

	// Fiscal XML needs an assigned number.
	if _, err := svc.ExportInvoice(context.Background(), "9", "xml"); err == nil {
		t.Error("xml export of a draft must be rejected")
	}

	// PDF of a draft is fine and gets a draft filename.
	artifact, err := svc.ExportInvoice(context.Background(), "9", "pdf")
	if err != nil {
		t.Fatalf("ExportInvoice: %v", err)
	}
	if artifact.Filename != "invoice-draft-9.pdf" {
		t.Errorf("filename: got %q", artifact.Filename)
	}
}
