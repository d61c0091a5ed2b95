package lifecycle

import (
	"errors"
	"strings"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// Input carries editor state into the controller. Derived fields (sequence
// numbers, VAT, totals, amount in words) are computed, never accepted.
type Input struct {
	InvoiceNo   string         `json:"invoiceNo"`
	Date        string         `json:"date"`
	DueDate     string         `json:"dueDate"`
	PaymentMode string         `json:"paymentMode"`
	Currency    string         `json:"currency"`
	Company     domain.Company `json:"company"`
	Client      string         `json:"client"`
	Items       []LineInput    `json:"items"`
}

// LineInput is one editor row before derivation.
type LineInput struct {
	Service     string  `json:"service"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Validate checks an invoice for commit readiness: issuing company with a
// well-formed TRN, a selected client, and at least one billable line.
func Validate(inv *domain.Invoice) error {
	if strings.TrimSpace(inv.Company.Name) == "" {
		return domain.ErrCompanyNameRequired
	}
	if err := ValidateTRN(inv.Company.TRN); err != nil {
		return err
	}
	if strings.TrimSpace(inv.Client) == "" {
		return domain.ErrClientRequired
	}
	for _, item := range inv.Items {
		if strings.TrimSpace(item.Service) != "" && item.Amount > 0 {
			return nil
		}
	}
	return domain.ErrNoBillableItem
}

// ValidateTRN checks a UAE tax registration number: present, digits only,
// 7 to 15 characters.
func ValidateTRN(trn string) error {
	trn = strings.TrimSpace(trn)
	if trn == "" {
		return domain.ErrTRNRequired
	}
	for _, r := range trn {
		if r < '0' || r > '9' {
			return domain.ErrTRNNotNumeric
		}
	}
	if len(trn) < 7 || len(trn) > 15 {
		return domain.ErrTRNLength
	}
	return nil
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrCompanyNameRequired) ||
		errors.Is(err, domain.ErrClientRequired) ||
		errors.Is(err, domain.ErrTRNRequired) ||
		errors.Is(err, domain.ErrTRNNotNumeric) ||
		errors.Is(err, domain.ErrTRNLength) ||
		errors.Is(err, domain.ErrNoBillableItem)
}
