package web

import (
	"fmt"
	"net/http"
	"strconv"

	"invoice-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// itemBody is the JSON shape of a line item in create and edit requests.
// Money fields are decimal strings to keep floats out of the pipeline.
type itemBody struct {
	ProductRef      string `json:"product_ref"`
	Description     string `json:"description"`
	Quantity        int64  `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
	TaxPercent      string `json:"tax_percent"`
}

func (b itemBody) toRequest() app.ItemRequest {
	return app.ItemRequest{
		ProductRef:      b.ProductRef,
		Description:     b.Description,
		Quantity:        b.Quantity,
		UnitPrice:       b.UnitPrice,
		DiscountPercent: b.DiscountPercent,
		TaxPercent:      b.TaxPercent,
	}
}

// listInvoices handles GET /api/invoices?status=draft.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

// createInvoice handles POST /api/invoices.
// Body: { customer_ref, customer_name?, customer_email?, order_ref?,
//         issue_date?, due_date?, notes?, items: [itemBody] }
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerRef   string     `json:"customer_ref"`
		CustomerName  string     `json:"customer_name"`
		CustomerEmail string     `json:"customer_email"`
		OrderRef      string     `json:"order_ref"`
		IssueDate     string     `json:"issue_date"`
		DueDate       string     `json:"due_date"`
		Notes         string     `json:"notes"`
		Items         []itemBody `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if body.CustomerRef == "" {
		writeError(w, r, "customer_ref is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreateInvoiceRequest{
		CustomerRef:   body.CustomerRef,
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		OrderRef:      body.OrderRef,
		IssueDate:     body.IssueDate,
		DueDate:       body.DueDate,
		Notes:         body.Notes,
	}
	for _, it := range body.Items {
		req.Items = append(req.Items, it.toRequest())
	}

	result, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Invoice)
}

// getInvoice handles GET /api/invoices/{ref}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInvoice(r.Context(), invoiceRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// addItem handles POST /api/invoices/{ref}/items.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var body itemBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddItem(r.Context(), invoiceRef(r), body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// lineNumber extracts and validates the {line} URL parameter.
func lineNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "line")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, r, fmt.Sprintf("invalid line number %q", raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// updateItem handles PUT /api/invoices/{ref}/items/{line}.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	line, ok := lineNumber(w, r)
	if !ok {
		return
	}
	var body itemBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateItem(r.Context(), invoiceRef(r), line, body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// removeItem handles DELETE /api/invoices/{ref}/items/{line}.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	line, ok := lineNumber(w, r)
	if !ok {
		return
	}
	result, err := h.svc.RemoveItem(r.Context(), invoiceRef(r), line)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// issueInvoice handles POST /api/invoices/{ref}/issue.
func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.IssueInvoice(r.Context(), invoiceRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// sendInvoice handles POST /api/invoices/{ref}/send.
func (h *Handler) sendInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SendInvoice(r.Context(), invoiceRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// payInvoice handles POST /api/invoices/{ref}/pay.
func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RecordPayment(r.Context(), invoiceRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// cancelInvoice handles POST /api/invoices/{ref}/cancel.
func (h *Handler) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CancelInvoice(r.Context(), invoiceRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// exportInvoice handles GET /api/invoices/{ref}/export/{format} and
// streams the rendered artifact as a download.
func (h *Handler) exportInvoice(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	artifact, err := h.svc.ExportInvoice(r.Context(), invoiceRef(r), format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	_, _ = w.Write(artifact.Data)
}
