package export

import (
	"fmt"
	"io"
	"strconv"

	"invoice-engine/internal/config"
	"invoice-engine/internal/core"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names, in fixed order.
const (
	sheetSummary = "Summary"
	sheetItems   = "Items"
)

// currencyNumFmt is applied cell-by-cell to the Unit Price and Subtotal
// columns, not sheet-wide — downstream templates rely on the other
// columns staying in General format.
const currencyNumFmt = `"R$ "#,##0.00`

// Fixed Summary column widths for downstream template compatibility.
const (
	summaryKeyWidth   = 20
	summaryValueWidth = 30
)

var itemHeaders = []string{"Description", "Quantity", "Unit Price", "Discount %", "Tax %", "Subtotal"}

// WorkbookExporter emits a two-sheet workbook: a key/value Summary and
// a tabular Items detail. The Items sheet is omitted entirely when the
// item list is empty.
type WorkbookExporter struct {
	issuer config.Issuer
}

func NewWorkbookExporter(issuer config.Issuer) *WorkbookExporter {
	return &WorkbookExporter{issuer: issuer}
}

func (e *WorkbookExporter) Extension() string { return "xlsx" }

func (e *WorkbookExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *WorkbookExporter) Render(inv *core.Invoice, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummary(f, inv); err != nil {
		return &SerializationError{Format: "xlsx", Err: err}
	}
	if len(inv.Items) > 0 {
		if err := e.writeItems(f, inv); err != nil {
			return &SerializationError{Format: "xlsx", Err: err}
		}
	}

	if err := f.Write(w); err != nil {
		return &SerializationError{Format: "xlsx", Err: err}
	}
	return nil
}

func (e *WorkbookExporter) writeSummary(f *excelize.File, inv *core.Invoice) error {
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", summaryKeyWidth); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetSummary, "B", "B", summaryValueWidth); err != nil {
		return err
	}

	rows := [][2]string{
		{"Invoice Number", inv.Number},
		{"Issue Date", DateOrNA(inv.IssueDate)},
		{"Due Date", DateOrNA(inv.DueDate)},
		{"Status", StatusLabel(inv.Status)},
		{"Order", OrNA(inv.OrderRef)},
		{"Customer", inv.CustomerName},
		{"Customer Email", inv.CustomerEmail},
		{"Subtotal", Money(inv.Subtotal)},
		{"Discount", Money(inv.DiscountAmount)},
		{"Tax", Money(inv.TaxAmount)},
		{"Total", Money(inv.TotalAmount)},
	}
	if inv.Notes != "" {
		rows = append(rows, [2]string{"Notes", inv.Notes})
	}

	for i, kv := range rows {
		row := i + 1
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (e *WorkbookExporter) writeItems(f *excelize.File, inv *core.Invoice) error {
	if _, err := f.NewSheet(sheetItems); err != nil {
		return err
	}

	for col, h := range itemHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetItems, cell, h); err != nil {
			return err
		}
	}

	currencyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strptr(currencyNumFmt)})
	if err != nil {
		return err
	}

	for i, it := range inv.Items {
		row := i + 2
		desc := it.Description
		if desc == "" {
			desc = it.ProductRef
		}
		cells := []struct {
			value    string
			numeric  bool
			currency bool
		}{
			{desc, false, false},
			{strconv.FormatInt(it.Quantity, 10), true, false},
			{Money(it.UnitPrice), true, true},
			{it.DiscountPercent.String(), true, false},
			{it.TaxPercent.String(), true, false},
			{Money(it.LineTotal), true, true},
		}
		for col, c := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			// Numeric cells carry the decimal's exact string so amounts
			// beyond float64's integer range survive the round trip.
			if c.numeric {
				err = f.SetCellDefault(sheetItems, cell, c.value)
			} else {
				err = f.SetCellValue(sheetItems, cell, c.value)
			}
			if err != nil {
				return err
			}
			// Currency format on Unit Price and Subtotal only.
			if c.currency {
				if err := f.SetCellStyle(sheetItems, cell, cell, currencyStyle); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func strptr(s string) *string { return &s }
