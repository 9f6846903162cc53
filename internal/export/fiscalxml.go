package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"invoice-engine/internal/config"
	"invoice-engine/internal/core"
)

// Fiscal XML mirrors the national electronic-invoice shape (NF-e).
// Element ordering is schema-mandated and fixed by struct field order.
// Numeric widths per field: 2 decimal places for monetary totals, 4 for
// quantities, 10 for unit prices.

// Environment flags for the ide block.
const (
	EnvironmentProduction   = 1
	EnvironmentHomologation = 2
)

// EnvironmentFromString maps a configuration value onto an environment
// flag. Anything other than "production" is treated as homologation, so
// a misconfigured deployment can never emit production documents.
func EnvironmentFromString(s string) int {
	if s == "production" {
		return EnvironmentProduction
	}
	return EnvironmentHomologation
}

// fixedUnitCode is the unit-of-measure code emitted for every item.
const fixedUnitCode = "UN"

type fiscalDocument struct {
	XMLName xml.Name  `xml:"NFe"`
	Inf     infFiscal `xml:"infNFe"`
}

type infFiscal struct {
	Version string      `xml:"versao,attr"`
	ID      string      `xml:"Id,attr"`
	Ide     identBlock  `xml:"ide"`
	Emit    issuerBlock `xml:"emit"`
	Dest    recipBlock  `xml:"dest"`
	Det     []itemBlock `xml:"det"`
	Total   totalBlock  `xml:"total"`
	Transp  transpBlock `xml:"transp"`
	Pag     payBlock    `xml:"pag"`
	InfAdic *extraBlock `xml:"infAdic,omitempty"`
}

type identBlock struct {
	NatOp string `xml:"natOp"` // operation nature
	Serie string `xml:"serie"`
	NNF   string `xml:"nNF"`   // invoice number
	DhEmi string `xml:"dhEmi"` // emission timestamp, RFC 3339
	TpAmb int    `xml:"tpAmb"` // environment flag
}

type issuerBlock struct {
	CNPJ  string     `xml:"CNPJ"`
	XNome string     `xml:"xNome"`
	Ender *enderBlock `xml:"enderEmit,omitempty"`
}

type enderBlock struct {
	XLgr string `xml:"xLgr"`
	XMun string `xml:"xMun"`
	UF   string `xml:"UF"`
	CEP  string `xml:"CEP"`
}

type recipBlock struct {
	XNome string `xml:"xNome"`
	Email string `xml:"email,omitempty"`
}

type itemBlock struct {
	NItem int       `xml:"nItem,attr"` // 1-based item index
	Prod  prodBlock `xml:"prod"`
	Imp   taxBlock  `xml:"imposto"`
}

type prodBlock struct {
	CProd  string `xml:"cProd"`
	XProd  string `xml:"xProd"`
	UCom   string `xml:"uCom"`
	QCom   string `xml:"qCom"`   // 4 decimal places
	VUnCom string `xml:"vUnCom"` // 10 decimal places
	VDesc  string `xml:"vDesc"`  // 2 decimal places
	VProd  string `xml:"vProd"`  // 2 decimal places
}

type taxBlock struct {
	PTrib string `xml:"pTrib"` // tax rate
	VTrib string `xml:"vTrib"` // per-item tax on the discounted base
}

type totalBlock struct {
	ICMSTot icmsTotBlock `xml:"ICMSTot"`
}

type icmsTotBlock struct {
	VProd    string `xml:"vProd"`    // subtotal
	VDesc    string `xml:"vDesc"`    // discount
	VTotTrib string `xml:"vTotTrib"` // tax
	VNF      string `xml:"vNF"`      // grand total
}

type transpBlock struct {
	ModFrete int `xml:"modFrete"` // 9 = no freight
}

type payBlock struct {
	DetPag payDetBlock `xml:"detPag"`
}

type payDetBlock struct {
	TPag string `xml:"tPag"` // 01 = cash
	VPag string `xml:"vPag"`
}

type extraBlock struct {
	InfCpl string `xml:"infCpl"`
}

// FiscalXMLSerializer emits the schema-constrained XML document. It
// performs no network transmission or signing; it only writes a
// well-formed file matching the expected shape.
type FiscalXMLSerializer struct {
	issuer      config.Issuer
	series      string
	environment int
	now         func() time.Time
}

func NewFiscalXMLSerializer(issuer config.Issuer, series string, environment int) *FiscalXMLSerializer {
	if series == "" {
		series = core.DefaultSeries
	}
	return &FiscalXMLSerializer{
		issuer:      issuer,
		series:      series,
		environment: environment,
		now:         time.Now,
	}
}

func (s *FiscalXMLSerializer) Extension() string   { return "xml" }
func (s *FiscalXMLSerializer) ContentType() string { return "application/xml" }

func (s *FiscalXMLSerializer) Render(inv *core.Invoice, w io.Writer) error {
	doc, err := s.build(inv)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return &SerializationError{Format: "xml", Err: err}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return &SerializationError{Format: "xml", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &SerializationError{Format: "xml", Err: err}
	}
	_, err = io.WriteString(w, "\n")
	if err != nil {
		return &SerializationError{Format: "xml", Err: err}
	}
	return nil
}

func (s *FiscalXMLSerializer) build(inv *core.Invoice) (*fiscalDocument, error) {
	items := make([]itemBlock, 0, len(inv.Items))
	for i, it := range inv.Items {
		// Recompute through the one line calculator so the XML can
		// never disagree with the aggregate.
		calc, err := it.Calculate()
		if err != nil {
			return nil, &SerializationError{Format: "xml", Err: fmt.Errorf("item %d: %w", i+1, err)}
		}
		desc := it.Description
		if desc == "" {
			desc = it.ProductRef
		}
		items = append(items, itemBlock{
			NItem: i + 1,
			Prod: prodBlock{
				CProd:  it.ProductRef,
				XProd:  desc,
				UCom:   fixedUnitCode,
				QCom:   Quantity4(it.Quantity),
				VUnCom: Price10(it.UnitPrice),
				VDesc:  Money(calc.Discount),
				VProd:  Money(calc.Base),
			},
			Imp: taxBlock{
				PTrib: it.TaxPercent.String(),
				VTrib: Money(calc.Tax),
			},
		})
	}

	var ender *enderBlock
	if s.issuer.Address != "" || s.issuer.City != "" {
		ender = &enderBlock{
			XLgr: s.issuer.Address,
			XMun: s.issuer.City,
			UF:   s.issuer.State,
			CEP:  s.issuer.ZipCode,
		}
	}

	var extra *extraBlock
	if inv.Notes != "" {
		extra = &extraBlock{InfCpl: inv.Notes}
	}

	return &fiscalDocument{
		Inf: infFiscal{
			Version: "4.00",
			ID:      "NFe-" + inv.Number,
			Ide: identBlock{
				NatOp: "VENDA",
				Serie: s.series,
				NNF:   inv.Number,
				DhEmi: s.now().Format(time.RFC3339),
				TpAmb: s.environment,
			},
			Emit: issuerBlock{
				CNPJ:  s.issuer.TaxID,
				XNome: s.issuer.LegalName,
				Ender: ender,
			},
			Dest: recipBlock{
				XNome: inv.CustomerName,
				Email: inv.CustomerEmail,
			},
			Det: items,
			Total: totalBlock{
				ICMSTot: icmsTotBlock{
					VProd:    Money(inv.Subtotal),
					VDesc:    Money(inv.DiscountAmount),
					VTotTrib: Money(inv.TaxAmount),
					VNF:      Money(inv.TotalAmount),
				},
			},
			Transp: transpBlock{ModFrete: 9},
			Pag: payBlock{
				DetPag: payDetBlock{TPag: "01", VPag: Money(inv.TotalAmount)},
			},
			InfAdic: extra,
		},
	}, nil
}
