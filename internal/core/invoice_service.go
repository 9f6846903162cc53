package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ItemInput is used when creating an invoice or editing its items.
// Description defaults to the catalog item's name upstream; this core
// receives it already resolved.
type ItemInput struct {
	ProductRef      string
	Description     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// CreateInvoiceInput carries everything needed for a new draft invoice.
// Customer and order references arrive pre-resolved; this core does not
// query external entities.
type CreateInvoiceInput struct {
	CustomerRef   string
	CustomerName  string
	CustomerEmail string
	OrderRef      string
	IssueDate     string // YYYY-MM-DD
	DueDate       string // optional
	Notes         string
	Items         []ItemInput
}

// InvoiceService manages invoice persistence and drives the status
// lifecycle. Every transition locks the invoice row and re-checks the
// state machine inside the transaction, so concurrent callers cannot
// race an invoice past an illegal transition.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, status *Status) ([]Invoice, error)

	// Item edits are permitted only while the invoice is draft.
	AddItem(ctx context.Context, invoiceID int, input ItemInput) (*Invoice, error)
	UpdateItem(ctx context.Context, invoiceID, lineNumber int, input ItemInput) (*Invoice, error)
	RemoveItem(ctx context.Context, invoiceID, lineNumber int) (*Invoice, error)

	// Issue transitions draft → issued and assigns the document number
	// exactly once. Issuing an already-issued invoice is a no-op.
	Issue(ctx context.Context, invoiceID int) (*Invoice, error)
	MarkSent(ctx context.Context, invoiceID int) (*Invoice, error)
	MarkPaid(ctx context.Context, invoiceID int) (*Invoice, error)
	Cancel(ctx context.Context, invoiceID int) (*Invoice, error)
}

type invoiceService struct {
	pool    *pgxpool.Pool
	numbers NumberService
	series  string
}

func NewInvoiceService(pool *pgxpool.Pool, numbers NumberService, series string) InvoiceService {
	if series == "" {
		series = DefaultSeries
	}
	return &invoiceService{pool: pool, numbers: numbers, series: series}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if strings.TrimSpace(input.CustomerRef) == "" {
		return nil, &ValidationError{Field: "customerRef", Message: "is required"}
	}

	inv := &Invoice{
		CustomerRef:   input.CustomerRef,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		OrderRef:      input.OrderRef,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		Status:        StatusDraft,
		Notes:         input.Notes,
	}
	for i, in := range input.Items {
		inv.Items = append(inv.Items, LineItem{
			LineNumber:      i + 1,
			ProductRef:      in.ProductRef,
			Description:     in.Description,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			DiscountPercent: in.DiscountPercent,
			TaxPercent:      in.TaxPercent,
		})
	}

	// A draft may be empty or partial, but any item that is present
	// must already be calculable.
	if err := ValidateItems(inv.Items, true); err != nil {
		return nil, err
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (customer_ref, customer_name, customer_email, order_ref,
		                      issue_date, due_date, status, subtotal, discount_amount,
		                      tax_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, NULLIF($6, '')::date, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, inv.CustomerRef, inv.CustomerName, inv.CustomerEmail, inv.OrderRef,
		inv.IssueDate, inv.DueDate, string(inv.Status),
		inv.Subtotal, inv.DiscountAmount, inv.TaxAmount, inv.TotalAmount, inv.Notes,
	).Scan(&inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i := range inv.Items {
		if err := insertItemTx(ctx, tx, inv.ID, &inv.Items[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice creation: %w", err)
	}

	return s.GetInvoice(ctx, inv.ID)
}

func insertItemTx(ctx context.Context, tx pgx.Tx, invoiceID int, it *LineItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO invoice_items (invoice_id, line_number, product_ref, description,
		                           quantity, unit_price, discount_percent, tax_percent, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, invoiceID, it.LineNumber, it.ProductRef, it.Description,
		it.Quantity, it.UnitPrice, it.DiscountPercent, it.TaxPercent, it.LineTotal)
	if err != nil {
		return fmt.Errorf("failed to insert invoice item %d: %w", it.LineNumber, err)
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const invoiceColumns = `
	i.id, COALESCE(i.number, ''), i.customer_ref, i.customer_name, i.customer_email,
	i.order_ref, COALESCE(i.issue_date::text, ''), COALESCE(i.due_date::text, ''),
	i.status, i.subtotal, i.discount_amount, i.tax_amount, i.total_amount, i.notes,
	i.created_at, i.issued_at, i.sent_at, i.paid_at, i.cancelled_at`

func scanInvoice(row pgx.Row, inv *Invoice) error {
	return row.Scan(
		&inv.ID, &inv.Number, &inv.CustomerRef, &inv.CustomerName, &inv.CustomerEmail,
		&inv.OrderRef, &inv.IssueDate, &inv.DueDate,
		&inv.Status, &inv.Subtotal, &inv.DiscountAmount, &inv.TaxAmount, &inv.TotalAmount, &inv.Notes,
		&inv.CreatedAt, &inv.IssuedAt, &inv.SentAt, &inv.PaidAt, &inv.CancelledAt,
	)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	var inv Invoice
	err := scanInvoice(s.pool.QueryRow(ctx,
		"SELECT"+invoiceColumns+" FROM invoices i WHERE i.id = $1", id), &inv)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", id, err)
	}

	items, err := fetchItemsQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	// Never trust stored aggregates: recompute from the items on load.
	if err := inv.Recalculate(); err != nil {
		return nil, fmt.Errorf("invoice %d failed recalculation: %w", id, err)
	}
	return &inv, nil
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	var id int
	err := s.pool.QueryRow(ctx, "SELECT id FROM invoices WHERE number = $1", number).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s not found", number)
		}
		return nil, fmt.Errorf("failed to look up invoice by number: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context, status *Status) ([]Invoice, error) {
	query := "SELECT" + invoiceColumns + " FROM invoices i"
	args := []any{}
	if status != nil {
		query += " WHERE i.status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY i.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchItemsQ(ctx context.Context, q pgxRowQuerier, invoiceID int) ([]LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, line_number, product_ref, description,
		       quantity, unit_price, discount_percent, tax_percent, line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.LineNumber, &it.ProductRef, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.DiscountPercent, &it.TaxPercent, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	// A dropped connection makes Next return false early; without this
	// check a truncated item list would be returned as authoritative and
	// recalculated into wrong totals.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice items: %w", err)
	}
	return items, nil
}

// ── Item edits ───────────────────────────────────────────────────────────────

// editItems runs mutate over the current item list inside a transaction
// that holds the invoice row lock. The edit is rejected with an
// InvoiceLockedError unless the invoice is still draft. After the
// mutation the whole invoice is revalidated, recalculated, and the
// items and stored aggregates rewritten.
func (s *invoiceService) editItems(ctx context.Context, invoiceID int, mutate func(items []LineItem) ([]LineItem, error)) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv := Invoice{ID: invoiceID}
	err = tx.QueryRow(ctx, "SELECT status FROM invoices WHERE id = $1 FOR UPDATE", invoiceID).Scan(&inv.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", invoiceID, err)
	}
	if err := inv.EnsureEditable(); err != nil {
		return nil, err
	}

	items, err := fetchItemsQ(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}

	items, err = mutate(items)
	if err != nil {
		return nil, err
	}

	// Renumber sequentially and recompute all derived values.
	inv.Items = items
	for i := range inv.Items {
		inv.Items[i].LineNumber = i + 1
	}
	if err := ValidateItems(inv.Items, true); err != nil {
		return nil, err
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return nil, fmt.Errorf("failed to clear invoice items: %w", err)
	}
	for i := range inv.Items {
		if err := insertItemTx(ctx, tx, invoiceID, &inv.Items[i]); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET subtotal = $1, discount_amount = $2, tax_amount = $3, total_amount = $4
		WHERE id = $5
	`, inv.Subtotal, inv.DiscountAmount, inv.TaxAmount, inv.TotalAmount, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item edit: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func itemFromInput(in ItemInput) LineItem {
	return LineItem{
		ProductRef:      in.ProductRef,
		Description:     in.Description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		TaxPercent:      in.TaxPercent,
	}
}

func (s *invoiceService) AddItem(ctx context.Context, invoiceID int, input ItemInput) (*Invoice, error) {
	if _, err := CalculateLine(input.Quantity, input.UnitPrice, input.DiscountPercent, input.TaxPercent); err != nil {
		return nil, err
	}
	return s.editItems(ctx, invoiceID, func(items []LineItem) ([]LineItem, error) {
		return append(items, itemFromInput(input)), nil
	})
}

func (s *invoiceService) UpdateItem(ctx context.Context, invoiceID, lineNumber int, input ItemInput) (*Invoice, error) {
	if _, err := CalculateLine(input.Quantity, input.UnitPrice, input.DiscountPercent, input.TaxPercent); err != nil {
		return nil, err
	}
	return s.editItems(ctx, invoiceID, func(items []LineItem) ([]LineItem, error) {
		for i := range items {
			if items[i].LineNumber == lineNumber {
				replacement := itemFromInput(input)
				replacement.ID = items[i].ID
				replacement.InvoiceID = items[i].InvoiceID
				items[i] = replacement
				return items, nil
			}
		}
		return nil, fmt.Errorf("invoice %d has no item at line %d", invoiceID, lineNumber)
	})
}

func (s *invoiceService) RemoveItem(ctx context.Context, invoiceID, lineNumber int) (*Invoice, error) {
	return s.editItems(ctx, invoiceID, func(items []LineItem) ([]LineItem, error) {
		for i := range items {
			if items[i].LineNumber == lineNumber {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("invoice %d has no item at line %d", invoiceID, lineNumber)
	})
}

// ── Lifecycle transitions ────────────────────────────────────────────────────

func (s *invoiceService) Issue(ctx context.Context, invoiceID int) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv := Invoice{ID: invoiceID}
	err = tx.QueryRow(ctx,
		"SELECT status, COALESCE(number, '') FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&inv.Status, &inv.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", invoiceID, err)
	}

	// Idempotent: a second issue attempt returns the invoice with its
	// original number and does not touch the sequence.
	if inv.Status == StatusIssued && inv.Number != "" {
		return s.GetInvoice(ctx, invoiceID)
	}

	inv.Items, err = fetchItemsQ(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.CanIssue(); err != nil {
		return nil, err
	}

	number, err := s.numbers.NextNumber(ctx, tx, s.series)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET status = $1, number = $2, issued_at = NOW(),
		    issue_date = COALESCE(issue_date, CURRENT_DATE)
		WHERE id = $3
	`, string(StatusIssued), number, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit issuance: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

// transition moves the invoice to the target status after re-checking
// the state machine under the row lock. timestampCol records when the
// transition happened.
func (s *invoiceService) transition(ctx context.Context, invoiceID int, to Status, timestampCol string) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status Status
	err = tx.QueryRow(ctx, "SELECT status FROM invoices WHERE id = $1 FOR UPDATE", invoiceID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", invoiceID, err)
	}

	if err := CanTransition(status, to); err != nil {
		return nil, err
	}

	// timestampCol is one of the fixed column names below, never user input.
	_, err = tx.Exec(ctx,
		fmt.Sprintf("UPDATE invoices SET status = $1, %s = NOW() WHERE id = $2", timestampCol),
		string(to), invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to transition invoice %d to %s: %w", invoiceID, to, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition to %s: %w", to, err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) MarkSent(ctx context.Context, invoiceID int) (*Invoice, error) {
	return s.transition(ctx, invoiceID, StatusSent, "sent_at")
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID int) (*Invoice, error) {
	return s.transition(ctx, invoiceID, StatusPaid, "paid_at")
}

// Cancel is terminal and non-reversible. The issued number, if any,
// stays on the invoice.
func (s *invoiceService) Cancel(ctx context.Context, invoiceID int) (*Invoice, error) {
	return s.transition(ctx, invoiceID, StatusCancelled, "cancelled_at")
}
