// Package numbering assigns per-month sequential invoice numbers in the
// INV-YYYYMM-NNNN format and keeps the counter recoverable from persisted
// invoice history.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatoora-app/fatoora/internal/store"
)

// manualPattern matches a hand-typed invoice number. The numeric suffix is
// deliberately open-ended so a manual "INV-202406-12" still resynchronizes
// the counter; the duplicate guard validates the value at commit time.
var manualPattern = regexp.MustCompile(`INV-(\d{4})(\d{2})-(\d+)`)

// Allocator formats and advances the monthly invoice counter.
type Allocator struct {
	store *store.Store
	now   func() time.Time
}

// New creates an allocator over the given store, using the wall clock.
func New(st *store.Store) *Allocator {
	return &Allocator{store: st, now: time.Now}
}

// WithClock overrides the clock. Tests pin the month with this.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// MonthPrefix returns the "INV-YYYYMM-" prefix for the current wall-clock
// month. Numbers are always claimed in the month of the export, not the
// month of the invoice's own date field.
func (a *Allocator) MonthPrefix() string {
	t := a.now()
	return fmt.Sprintf("INV-%04d%02d-", t.Year(), int(t.Month()))
}

// Format renders the next invoice number without claiming it. The counter
// only moves on Advance.
func (a *Allocator) Format() string {
	return fmt.Sprintf("%s%04d", a.MonthPrefix(), a.store.Counter())
}

// Advance increments the counter by exactly one and persists it. Callers
// invoke it exactly once per successfully committed new invoice, never for
// edits of existing invoices.
func (a *Allocator) Advance() error {
	return a.store.AdvanceCounter()
}

// Recover reconstructs the counter after a reload: scan every invoice
// (draft and final) whose number carries the current month prefix, take the
// highest numeric suffix, and continue from max+1. A month with no matching
// numbers starts over at 1.
func (a *Allocator) Recover() {
	prefix := a.MonthPrefix()
	max := 0
	for _, inv := range a.store.Invoices() {
		if !strings.HasPrefix(inv.InvoiceNo, prefix) {
			continue
		}
		if n := suffixValue(inv.InvoiceNo); n > max {
			max = n
		}
	}
	a.store.SetCounter(max + 1)
}

// AdoptManual resynchronizes the counter from a hand-edited number on field
// exit. A value matching INV-YYYYMM-NNNN sets the counter to NNNN+1 with no
// validation against existing numbers — trust the human now, verify at
// commit. Returns whether the value was adopted. The adopted counter is
// memory-only until the next save.
func (a *Allocator) AdoptManual(value string) bool {
	m := manualPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return false
	}
	a.store.SetCounter(n + 1)
	return true
}

// suffixValue parses the numeric suffix of an INV-YYYYMM-NNNN number,
// returning 0 when the shape is unexpected.
func suffixValue(invoiceNo string) int {
	parts := strings.Split(invoiceNo, "-")
	if len(parts) != 3 {
		return 0
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return n
}
