// Package totals derives line and aggregate amounts from raw line items.
// Everything here is a pure function of the inputs and the fixed tax rate.
package totals

import (
	"math"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// DefaultVATRate is the UAE standard VAT rate in percent.
const DefaultVATRate = 5.0

// Calculator computes per-line VAT/totals and invoice aggregates for a tax
// rate fixed at construction.
type Calculator struct {
	rate float64
}

// NewCalculator creates a calculator for the given percentage rate.
func NewCalculator(rate float64) *Calculator {
	return &Calculator{rate: rate}
}

// Rate returns the percentage rate the calculator was built with.
func (c *Calculator) Rate() float64 { return c.rate }

// Line computes the derived VAT and total for a single line amount.
// Both are rounded to 2 decimals.
func (c *Calculator) Line(amount float64) (vat, total float64) {
	vat = Round2(amount * c.rate / 100)
	total = Round2(amount + vat)
	return vat, total
}

// Apply recomputes VAT and Total on every item in place and returns the
// slice for chaining. Sequence numbers are left untouched; renumbering is
// the lifecycle controller's job.
func (c *Calculator) Apply(items []domain.LineItem) []domain.LineItem {
	for i := range items {
		items[i].VAT, items[i].Total = c.Line(items[i].Amount)
	}
	return items
}

// Aggregate sums the per-line values. The aggregates are sums of already
// rounded line values, not a re-rounding of the raw sum — this matches how
// the figures appear on the rendered document.
func (c *Calculator) Aggregate(items []domain.LineItem) (subtotal, vatTotal, grandTotal float64) {
	for _, it := range items {
		subtotal += it.Amount
		vatTotal += it.VAT
		grandTotal += it.Total
	}
	return Round2(subtotal), Round2(vatTotal), Round2(grandTotal)
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
