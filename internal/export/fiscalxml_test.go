package export_test

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"invoice-engine/internal/config"
	"invoice-engine/internal/core"
	"invoice-engine/internal/export"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testIssuer() config.Issuer {
	return config.Issuer{
		LegalName: "Prime Engenharia Ltda",
		TaxID:     "12.345.678/0001-90",
		Address:   "Av. Principal, 100",
		City:      "Sao Luis",
		State:     "MA",
		ZipCode:   "65000-000",
		Email:     "contato@prime.example",
	}
}

// referenceInvoice is the fixed sample used across the export tests:
// two items totalling 250.00 / 20.00 / 13.00 / 243.00.
func referenceInvoice(t *testing.T) *core.Invoice {
	t.Helper()
	inv := &core.Invoice{
		ID:            7,
		Number:        "INV-000123",
		CustomerRef:   "C-001",
		CustomerName:  "Acme Corp",
		CustomerEmail: "billing@acme.example",
		OrderRef:      "ORD-42",
		IssueDate:     "2026-02-01",
		DueDate:       "2026-03-01",
		Status:        core.StatusIssued,
		Notes:         "Payment due within 30 days.",
		Items: []core.LineItem{
			{LineNumber: 1, ProductRef: "P-100", Description: "Widget A", Quantity: 2, UnitPrice: dec("100.00"), DiscountPercent: dec("10"), TaxPercent: dec("5")},
			{LineNumber: 2, ProductRef: "P-200", Description: "Widget B", Quantity: 1, UnitPrice: dec("50.00"), TaxPercent: dec("8")},
		},
	}
	if err := inv.Recalculate(); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}
	return inv
}

// parsedFiscal mirrors just the fields the tests assert on.
type parsedFiscal struct {
	XMLName xml.Name `xml:"NFe"`
	Inf     struct {
		Ide struct {
			NatOp string `xml:"natOp"`
			Serie string `xml:"serie"`
			NNF   string `xml:"nNF"`
			DhEmi string `xml:"dhEmi"`
			TpAmb int    `xml:"tpAmb"`
		} `xml:"ide"`
		Emit struct {
			CNPJ  string `xml:"CNPJ"`
			XNome string `xml:"xNome"`
		} `xml:"emit"`
		Dest struct {
			XNome string `xml:"xNome"`
			Email string `xml:"email"`
		} `xml:"dest"`
		Det []struct {
			NItem int `xml:"nItem,attr"`
			Prod  struct {
				CProd  string `xml:"cProd"`
				UCom   string `xml:"uCom"`
				QCom   string `xml:"qCom"`
				VUnCom string `xml:"vUnCom"`
				VDesc  string `xml:"vDesc"`
				VProd  string `xml:"vProd"`
			} `xml:"prod"`
			Imp struct {
				VTrib string `xml:"vTrib"`
			} `xml:"imposto"`
		} `xml:"det"`
		Total struct {
			ICMSTot struct {
				VProd    string `xml:"vProd"`
				VDesc    string `xml:"vDesc"`
				VTotTrib string `xml:"vTotTrib"`
				VNF      string `xml:"vNF"`
			} `xml:"ICMSTot"`
		} `xml:"total"`
		Transp struct {
			ModFrete int `xml:"modFrete"`
		} `xml:"transp"`
		Pag struct {
			DetPag struct {
				TPag string `xml:"tPag"`
				VPag string `xml:"vPag"`
			} `xml:"detPag"`
		} `xml:"pag"`
		InfAdic struct {
			InfCpl string `xml:"infCpl"`
		} `xml:"infAdic"`
	} `xml:"infNFe"`
}

func renderFiscal(t *testing.T, inv *core.Invoice) ([]byte, parsedFiscal) {
	t.Helper()
	s := export.NewFiscalXMLSerializer(testIssuer(), "INV", export.EnvironmentHomologation)

	var buf bytes.Buffer
	if err := s.Render(inv, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var doc parsedFiscal
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}
	return buf.Bytes(), doc
}

func TestFiscalXML_Structure(t *testing.T) {
	raw, doc := renderFiscal(t, referenceInvoice(t))

	if doc.Inf.Ide.NatOp != "VENDA" {
		t.Errorf("natOp: got %q", doc.Inf.Ide.NatOp)
	}
	if doc.Inf.Ide.NNF != "INV-000123" {
		t.Errorf("nNF: got %q", doc.Inf.Ide.NNF)
	}
	if doc.Inf.Ide.TpAmb != export.EnvironmentHomologation {
		t.Errorf("tpAmb: got %d", doc.Inf.Ide.TpAmb)
	}
	if _, err := time.Parse(time.RFC3339, doc.Inf.Ide.DhEmi); err != nil {
		t.Errorf("dhEmi is not RFC 3339: %q", doc.Inf.Ide.DhEmi)
	}
	if doc.Inf.Emit.XNome != "Prime Engenharia Ltda" {
		t.Errorf("emit xNome: got %q", doc.Inf.Emit.XNome)
	}
	if doc.Inf.Dest.XNome != "Acme Corp" || doc.Inf.Dest.Email != "billing@acme.example" {
		t.Errorf("dest block wrong: %+v", doc.Inf.Dest)
	}
	if doc.Inf.Transp.ModFrete != 9 {
		t.Errorf("modFrete: got %d, want 9", doc.Inf.Transp.ModFrete)
	}
	if doc.Inf.Pag.DetPag.TPag != "01" {
		t.Errorf("tPag: got %q, want 01", doc.Inf.Pag.DetPag.TPag)
	}
	if doc.Inf.Pag.DetPag.VPag != "243.00" {
		t.Errorf("vPag: got %q, want 243.00", doc.Inf.Pag.DetPag.VPag)
	}
	if doc.Inf.InfAdic.InfCpl != "Payment due within 30 days." {
		t.Errorf("infCpl: got %q", doc.Inf.InfAdic.InfCpl)
	}

	// Element ordering is schema-mandated: ide before emit before dest
	// before det before total.
	s := string(raw)
	order := []string{"<ide>", "<emit>", "<dest>", "<det ", "<total>", "<transp>", "<pag>", "<infAdic>"}
	last := -1
	for _, tag := range order {
		idx := strings.Index(s, tag)
		if idx < 0 {
			t.Fatalf("missing element %s", tag)
		}
		if idx < last {
			t.Errorf("element %s out of order", tag)
		}
		last = idx
	}
}

func TestFiscalXML_ItemsAndWidths(t *testing.T) {
	_, doc := renderFiscal(t, referenceInvoice(t))

	if len(doc.Inf.Det) != 2 {
		t.Fatalf("expected 2 det elements, got %d", len(doc.Inf.Det))
	}

	first := doc.Inf.Det[0]
	if first.NItem != 1 {
		t.Errorf("first nItem: got %d, want 1", first.NItem)
	}
	if first.Prod.UCom != "UN" {
		t.Errorf("uCom: got %q, want UN", first.Prod.UCom)
	}
	// Schema-mandated widths: 4 decimals for quantity, 10 for unit
	// price, 2 for monetary values.
	if first.Prod.QCom != "2.0000" {
		t.Errorf("qCom: got %q, want 2.0000", first.Prod.QCom)
	}
	if first.Prod.VUnCom != "100.0000000000" {
		t.Errorf("vUnCom: got %q, want 100.0000000000", first.Prod.VUnCom)
	}
	if first.Prod.VProd != "200.00" {
		t.Errorf("vProd: got %q, want 200.00", first.Prod.VProd)
	}
	if first.Prod.VDesc != "20.00" {
		t.Errorf("vDesc: got %q, want 20.00", first.Prod.VDesc)
	}
	if first.Imp.VTrib != "9.00" {
		t.Errorf("vTrib: got %q, want 9.00 (tax on the discounted base)", first.Imp.VTrib)
	}

	second := doc.Inf.Det[1]
	if second.NItem != 2 {
		t.Errorf("second nItem: got %d, want 2", second.NItem)
	}
	if second.Imp.VTrib != "4.00" {
		t.Errorf("second vTrib: got %q, want 4.00", second.Imp.VTrib)
	}

	tot := doc.Inf.Total.ICMSTot
	if tot.VProd != "250.00" || tot.VDesc != "20.00" || tot.VTotTrib != "13.00" || tot.VNF != "243.00" {
		t.Errorf("totals block wrong: %+v", tot)
	}
}

func TestFiscalXML_InvalidItemAborts(t *testing.T) {
	inv := referenceInvoice(t)
	inv.Items[1].Quantity = 0 // corrupted after validation

	s := export.NewFiscalXMLSerializer(testIssuer(), "INV", export.EnvironmentHomologation)
	var buf bytes.Buffer
	err := s.Render(inv, &buf)
	if err == nil {
		t.Fatal("expected serialization failure for invalid item")
	}
}
