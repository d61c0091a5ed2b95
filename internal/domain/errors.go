package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Lifecycle errors
	ErrNoCandidate     = errors.New("no invoice in progress")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNotFinal        = errors.New("only exported invoices can be loaded for editing")
	ErrNotDraft        = errors.New("exported invoices cannot be resumed as drafts")

	// Validation errors
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrClientRequired      = errors.New("a client must be selected")
	ErrTRNRequired         = errors.New("TRN is required")
	ErrTRNNotNumeric       = errors.New("TRN must contain only digits")
	ErrTRNLength           = errors.New("TRN must be between 7 and 15 digits")
	ErrNoBillableItem      = errors.New("at least one item with a service and an amount is required")

	// Client management errors
	ErrClientNotFound = errors.New("client not found")
	ErrClientExists   = errors.New("a client with this name already exists")

	// Export errors
	ErrCancelled = errors.New("export cancelled by user")
)
