package export

import (
	"io"
	"strconv"

	"invoice-engine/internal/config"
	"invoice-engine/internal/core"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays the invoice out as a paginated A4 document: header
// block, two-column party block, item table in list order, totals
// block, and an optional notes block. All monetary values go through
// the shared format layer; the renderer does no arithmetic of its own.
type PDFRenderer struct {
	issuer config.Issuer
}

func NewPDFRenderer(issuer config.Issuer) *PDFRenderer {
	return &PDFRenderer{issuer: issuer}
}

func (r *PDFRenderer) Extension() string   { return "pdf" }
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Item table column widths in mm. The page body is 190mm wide.
var pdfColWidths = [5]float64{80, 20, 30, 25, 35}

var pdfColHeaders = [5]string{"Description", "Qty", "Unit Price", "Discount %", "Line Total"}

func (r *PDFRenderer) Render(inv *core.Invoice, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	r.header(pdf, inv)
	r.partyBlock(pdf, inv)
	r.itemTable(pdf, inv)
	r.totalsBlock(pdf, inv)
	r.notesBlock(pdf, inv)

	if err := pdf.Output(w); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

func (r *PDFRenderer) header(pdf *gofpdf.Fpdf, inv *core.Invoice) {
	if r.issuer.LogoPath != "" {
		pdf.ImageOptions(r.issuer.LogoPath, 10, 10, 30, 0, false, gofpdf.ImageOptions{}, 0, "")
		pdf.SetXY(45, 12)
	}

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(110, 10, r.issuer.LegalName, "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	number := inv.Number
	if number == "" {
		number = "DRAFT"
	}
	pdf.CellFormat(0, 10, "Invoice "+number, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(110, 6, r.issuer.TaxID, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, StatusLabel(inv.Status), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func (r *PDFRenderer) partyBlock(pdf *gofpdf.Fpdf, inv *core.Invoice) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 6, "Invoice Details", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Bill To", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	left := []string{
		"Issue Date: " + DateOrNA(inv.IssueDate),
		"Due Date: " + DateOrNA(inv.DueDate),
		"Order: " + OrNA(inv.OrderRef),
	}
	right := []string{
		inv.CustomerName,
		inv.CustomerEmail,
		"",
	}
	for i := range left {
		pdf.CellFormat(95, 5, left[i], "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 5, right[i], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *PDFRenderer) itemTable(pdf *gofpdf.Fpdf, inv *core.Invoice) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range pdfColHeaders {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(pdfColWidths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range inv.Items {
		desc := it.Description
		if desc == "" {
			desc = it.ProductRef
		}
		pdf.CellFormat(pdfColWidths[0], 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColWidths[1], 6, strconv.FormatInt(it.Quantity, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfColWidths[2], 6, Currency(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfColWidths[3], 6, Percent(it.DiscountPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfColWidths[4], 6, Currency(it.LineTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (r *PDFRenderer) totalsBlock(pdf *gofpdf.Fpdf, inv *core.Invoice) {
	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", Currency(inv.Subtotal), false},
		{"Discount", Currency(inv.DiscountAmount), false},
		{"Tax", Currency(inv.TaxAmount), false},
		{"Total", Currency(inv.TotalAmount), true},
	}
	for _, row := range rows {
		if row.bold {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(155, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, row.value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *PDFRenderer) notesBlock(pdf *gofpdf.Fpdf, inv *core.Invoice) {
	if inv.Notes != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, inv.Notes, "", "L", false)
		pdf.Ln(4)
	}

	if r.issuer.BankName != "" || r.issuer.BankAccount != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 5, "Bank: "+r.issuer.BankName+"  Account: "+r.issuer.BankAccount, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}
