package numbering

import (
	"testing"
	"time"

	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/store"
)

// memPersister keeps the document in memory for allocator tests.
type memPersister struct{ doc *domain.Document }

func (m *memPersister) LoadDocument() (*domain.Document, error) { return m.doc, nil }
func (m *memPersister) SaveDocument(doc *domain.Document) error { m.doc = doc; return nil }
func (m *memPersister) LoadCompany() (*domain.Company, error)   { return nil, nil }
func (m *memPersister) SaveCompany(domain.Company) error        { return nil }
func (m *memPersister) ExportFolder() (string, error)           { return "", nil }
func (m *memPersister) SetExportFolder(string) error            { return nil }

func june2024() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func newTestAllocator(t *testing.T) (*Allocator, *store.Store) {
	t.Helper()
	st := store.New(&memPersister{})
	if err := st.Load(); err != nil {
		t.Fatal(err)
	}
	a := New(st).WithClock(june2024)
	return a, st
}

// ─── Format ─────────────────────────────────────────────────────────────────

func TestFormat_CounterSeven(t *testing.T) {
	a, st := newTestAllocator(t)
	st.SetCounter(7)

	if got := a.Format(); got != "INV-202406-0007" {
		t.Errorf("Format() = %q, want %q", got, "INV-202406-0007")
	}
	// Formatting must not claim the number.
	if st.Counter() != 7 {
		t.Errorf("Counter() = %d, want 7 after Format", st.Counter())
	}
}

func TestFormat_UsesWallClockMonth(t *testing.T) {
	a, _ := newTestAllocator(t)
	a.WithClock(func() time.Time {
		return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	})
	if got := a.Format(); got != "INV-202407-0001" {
		t.Errorf("Format() = %q, want export-month number", got)
	}
}

// ─── Advance ────────────────────────────────────────────────────────────────

func TestAdvance_IncrementsByOne(t *testing.T) {
	a, st := newTestAllocator(t)
	st.SetCounter(7)
	if err := a.Advance(); err != nil {
		t.Fatal(err)
	}
	if st.Counter() != 8 {
		t.Errorf("Counter() = %d, want 8", st.Counter())
	}
}

// ─── Recover ────────────────────────────────────────────────────────────────

func TestRecover_MaxPlusOne(t *testing.T) {
	a, st := newTestAllocator(t)
	st.UpsertInvoice(domain.Invoice{ID: "1", InvoiceNo: "INV-202406-0003", Status: domain.StatusFinal})
	st.UpsertInvoice(domain.Invoice{ID: "2", InvoiceNo: "INV-202406-0009", Status: domain.StatusDraft})
	st.UpsertInvoice(domain.Invoice{ID: "3", InvoiceNo: "INV-202405-0044", Status: domain.StatusFinal}) // other month
	st.SetCounter(1)

	a.Recover()

	// Drafts count too; the May number does not.
	if st.Counter() != 10 {
		t.Errorf("Counter() = %d, want 10", st.Counter())
	}
}

func TestRecover_EmptyMonthStartsAtOne(t *testing.T) {
	a, st := newTestAllocator(t)
	st.SetCounter(99)
	a.Recover()
	if st.Counter() != 1 {
		t.Errorf("Counter() = %d, want 1 for a month with no invoices", st.Counter())
	}
}

func TestRecover_IgnoresMalformedNumbers(t *testing.T) {
	a, st := newTestAllocator(t)
	st.UpsertInvoice(domain.Invoice{ID: "1", InvoiceNo: "INV-202406-junk"})
	st.UpsertInvoice(domain.Invoice{ID: "2", InvoiceNo: "INV-202406-0002"})
	a.Recover()
	if st.Counter() != 3 {
		t.Errorf("Counter() = %d, want 3", st.Counter())
	}
}

// ─── Manual Adoption ────────────────────────────────────────────────────────

func TestAdoptManual(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		adopted bool
		counter int
	}{
		{
			name:    "well formed number",
			value:   "INV-202406-0012",
			adopted: true,
			counter: 13,
		},
		{
			name:    "unpadded suffix",
			value:   "INV-202406-7",
			adopted: true,
			counter: 8,
		},
		{
			name:    "surrounding whitespace",
			value:   "  INV-202406-0030  ",
			adopted: true,
			counter: 31,
		},
		{
			name:    "garbage is ignored",
			value:   "draft-7",
			adopted: false,
			counter: 1,
		},
		{
			name:    "empty is ignored",
			value:   "",
			adopted: false,
			counter: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, st := newTestAllocator(t)
			got := a.AdoptManual(tt.value)
			if got != tt.adopted {
				t.Errorf("AdoptManual(%q) = %v, want %v", tt.value, got, tt.adopted)
			}
			if st.Counter() != tt.counter {
				t.Errorf("Counter() = %d, want %d", st.Counter(), tt.counter)
			}
		})
	}
}

// No validation happens at adoption time; a number that collides with an
// existing final invoice is caught later by the duplicate guard.
func TestAdoptManual_NoValidationAgainstExisting(t *testing.T) {
	a, st := newTestAllocator(t)
	st.UpsertInvoice(domain.Invoice{ID: "1", InvoiceNo: "INV-202406-0005", Status: domain.StatusFinal})

	if !a.AdoptManual("INV-202406-0004") {
		t.Fatal("adoption should succeed without checking history")
	}
	if st.Counter() != 5 {
		t.Errorf("Counter() = %d, want 5", st.Counter())
	}
}
