// Package dupcheck decides whether committing a candidate invoice would
// violate the uniqueness invariants: one number per final invoice, one
// final invoice per client per calendar month. Drafts never participate —
// only an export finalizes the monthly and number claims.
package dupcheck

import (
	"fmt"
	"time"

	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/store"
)

// Reason identifies which rule blocked a commit. The values are a
// compatibility contract and must not change.
type Reason string

const (
	ReasonInvoiceNumber   Reason = "invoice_number"
	ReasonClientSameMonth Reason = "client_same_month"
)

// Result is the outcome of a duplicate check. When Duplicate is set,
// Conflicting identifies the final invoice that holds the claim.
type Result struct {
	Duplicate   bool
	Reason      Reason
	Conflicting *domain.Invoice
	Message     string
}

// Guard runs duplicate checks against the record store.
type Guard struct {
	store *store.Store
}

// New creates a guard over the given store.
func New(st *store.Store) *Guard {
	return &Guard{store: st}
}

// Check tests a candidate (client, invoiceNo, date) against all final
// invoices. excludeID skips one record — set during edit-of-final re-export
// so an invoice never collides with itself; pass "" otherwise. Dates are
// compared by their YYYY-MM string prefix; a malformed date cannot match
// any month and degrades silently to "no conflict" on the month rule.
func (g *Guard) Check(clientName, invoiceNo, date, excludeID string) Result {
	finals := g.store.FinalInvoices()

	for i := range finals {
		inv := &finals[i]
		if inv.ID == excludeID {
			continue
		}
		if inv.InvoiceNo == invoiceNo {
			return Result{
				Duplicate:   true,
				Reason:      ReasonInvoiceNumber,
				Conflicting: inv,
				Message: fmt.Sprintf(
					"invoice number %q already exists: invoice %s for %s dated %s — each invoice number must be unique",
					invoiceNo, inv.InvoiceNo, inv.Client, inv.Date),
			}
		}
	}

	month := domain.MonthKey(date)
	if month == "" {
		return Result{}
	}
	for i := range finals {
		inv := &finals[i]
		if inv.ID == excludeID {
			continue
		}
		if domain.SameName(inv.Client, clientName) && inv.MonthKey() == month {
			return Result{
				Duplicate:   true,
				Reason:      ReasonClientSameMonth,
				Conflicting: inv,
				Message: fmt.Sprintf(
					"client %q already has an exported invoice for %s: invoice %s dated %s — one invoice per client per month",
					clientName, monthLabel(month), inv.InvoiceNo, inv.Date),
			}
		}
	}

	return Result{}
}

// monthLabel renders a YYYY-MM key as "June 2024" for block messages.
func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}
