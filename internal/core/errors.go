package core

import (
	"fmt"
	"strings"
)

// ArithmeticError is returned by the money helpers when an operation is
// mathematically undefined (currently only division by zero).
type ArithmeticError struct {
	Op     string
	Reason string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error in %s: %s", e.Op, e.Reason)
}

// ValidationError reports a single invalid line-item input, naming the
// offending field so the caller can highlight it upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ItemError ties a validation failure to the 1-based position of the
// line item that caused it.
type ItemError struct {
	Line int
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Line, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// InvalidInvoiceError carries every offending item found during
// aggregate-level validation, not just the first, so the caller can
// report all problems at once.
type InvalidInvoiceError struct {
	Items []error
}

func (e *InvalidInvoiceError) Error() string {
	if len(e.Items) == 0 {
		return "invalid invoice"
	}
	msgs := make([]string, len(e.Items))
	for i, err := range e.Items {
		msgs[i] = err.Error()
	}
	return "invalid invoice: " + strings.Join(msgs, "; ")
}

func (e *InvalidInvoiceError) Unwrap() []error { return e.Items }

// InvalidTransitionError reports an illegal status change. Both sides of
// the attempted transition are kept for the upstream error message.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition invoice from %s to %s", e.From, e.To)
}

// InvoiceLockedError is returned when an item edit is attempted on a
// non-draft invoice. Numbered documents must never silently change totals.
type InvoiceLockedError struct {
	Status Status
}

func (e *InvoiceLockedError) Error() string {
	return fmt.Sprintf("invoice is %s: items can only be edited while the invoice is draft", e.Status)
}

// NumberAllocationError wraps a failure of the number sequence authority.
type NumberAllocationError struct {
	Err error
}

func (e *NumberAllocationError) Error() string {
	return fmt.Sprintf("invoice number allocation failed: %v", e.Err)
}

func (e *NumberAllocationError) Unwrap() error { return e.Err }
