// Package web is the HTTP adapter. It translates JSON requests into
// ApplicationService calls and domain errors into status codes; it
// contains no business logic.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoice-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit: invoice payloads are small, anything bigger is abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices/{ref}", h.getInvoice)

		r.Post("/api/invoices/{ref}/items", h.addItem)
		r.Put("/api/invoices/{ref}/items/{line}", h.updateItem)
		r.Delete("/api/invoices/{ref}/items/{line}", h.removeItem)

		r.Post("/api/invoices/{ref}/issue", h.issueInvoice)
		r.Post("/api/invoices/{ref}/send", h.sendInvoice)
		r.Post("/api/invoices/{ref}/pay", h.payInvoice)
		r.Post("/api/invoices/{ref}/cancel", h.cancelInvoice)

		r.Get("/api/invoices/{ref}/export/{format}", h.exportInvoice)
	})

	h.router = r
	return r
}

// health reports service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// invoiceRef extracts the {ref} URL parameter (numeric ID or invoice number).
func invoiceRef(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for
// all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
