// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"regexp"
	"strings"
)

// ─── Invoice Types ──────────────────────────────────────────────────────────

// Status is the lifecycle state of an invoice.
type Status string

const (
	// StatusDraft marks a working, mutable snapshot. Drafts are exempt from
	// uniqueness checks.
	StatusDraft Status = "draft"

	// StatusFinal marks an invoice committed by a successful export. Final
	// invoices claim their number and their client-month slot.
	StatusFinal Status = "final"
)

// Company is the issuing company snapshot embedded in every invoice.
type Company struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	CityCountry string `json:"cityCountry"`
	Contact     string `json:"contact"`
	TRN         string `json:"trn"`
}

// Client is a billable party. Invoices reference clients by name snapshot,
// not by id — renaming a client does not rewrite historical invoices.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}

// LineItem is one row of an invoice. VAT and Total are derived from Amount
// and the tax rate; they are never set independently.
type LineItem struct {
	Sequence    int     `json:"sl"`
	Service     string  `json:"service"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	VAT         float64 `json:"vat"`
	Total       float64 `json:"total"`
}

// Invoice is one logical invoice. The JSON field names are a compatibility
// contract with the persisted document format and must not change.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNo     string     `json:"invoiceNo"`
	Date          string     `json:"date"`
	PaymentMode   string     `json:"paymentMode"`
	Currency      string     `json:"currency"`
	DueDate       string     `json:"dueDate"`
	Company       Company    `json:"company"`
	Client        string     `json:"client"`
	Items         []LineItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	VATTotal      float64    `json:"vatTotal"`
	GrandTotal    float64    `json:"grandTotal"`
	AmountInWords string     `json:"amountInWords"`
	Status        Status     `json:"status"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

// IsFinal reports whether the invoice has been committed by an export.
func (i *Invoice) IsFinal() bool { return i.Status == StatusFinal }

// MonthKey returns the YYYY-MM prefix of the invoice date, or "" when the
// date is not ISO formatted. Malformed dates degrade to "no match" in
// duplicate scoping rather than erroring.
func (i *Invoice) MonthKey() string { return MonthKey(i.Date) }

// ─── Persisted Document ─────────────────────────────────────────────────────

// Document is the whole persisted state: counter, clients, and invoices.
// It is serialized as one JSON blob on every save.
type Document struct {
	InvoiceNumber int       `json:"invoiceNumber"`
	Clients       []Client  `json:"clients"`
	Invoices      []Invoice `json:"invoices"`
}

// ─── Import Types ───────────────────────────────────────────────────────────

// ImportedClient is one row extracted by the spreadsheet importer before
// deduplication and id assignment.
type ImportedClient struct {
	Name    string
	Phone   string
	Address string
}

// ─── Utilities ──────────────────────────────────────────────────────────────

var isoMonth = regexp.MustCompile(`^\d{4}-\d{2}`)

// MonthKey extracts the YYYY-MM prefix from an ISO YYYY-MM-DD date string.
// Returns "" for anything that does not start with a year-month pair.
func MonthKey(date string) string {
	if !isoMonth.MatchString(date) {
		return ""
	}
	return date[:7]
}

// SameName compares client names the way the store and the duplicate guard
// do: case-insensitively, ignoring surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
