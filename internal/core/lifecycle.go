package core

// Allowed status transitions:
//
//	draft → issued → sent → paid
//	draft, issued, sent → cancelled
//
// paid and cancelled are terminal. Cancelling never unassigns a
// previously issued number; numbers are never reused.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusIssued, StatusCancelled},
	StatusIssued:    {StatusSent, StatusCancelled},
	StatusSent:      {StatusPaid, StatusCancelled},
	StatusPaid:      nil,
	StatusCancelled: nil,
}

// CanTransition checks whether a status change is permitted, returning
// an InvalidTransitionError when it is not.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// Editable reports whether the invoice's items may still be changed.
func (inv *Invoice) Editable() bool {
	return inv.Status == StatusDraft
}

// EnsureEditable returns an InvoiceLockedError when item edits are no
// longer allowed. Once a document number is visible to the outside
// world, its totals must never silently change.
func (inv *Invoice) EnsureEditable() error {
	if !inv.Editable() {
		return &InvoiceLockedError{Status: inv.Status}
	}
	return nil
}

// CanIssue checks the issuance preconditions: the invoice must be able
// to transition to issued and the item set must pass full validation.
// An already-issued invoice reports nil so issuance stays idempotent.
func (inv *Invoice) CanIssue() error {
	if inv.Status == StatusIssued {
		return nil
	}
	if err := CanTransition(inv.Status, StatusIssued); err != nil {
		return err
	}
	return ValidateItems(inv.Items, false)
}
