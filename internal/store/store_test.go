package store

import (
	"testing"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// memPersister is an in-memory Persister for store tests.
type memPersister struct {
	doc     *domain.Document
	company *domain.Company
	folder  string
	saves   int
}

func (m *memPersister) LoadDocument() (*domain.Document, error) { return m.doc, nil }
func (m *memPersister) SaveDocument(doc *domain.Document) error {
	m.doc = doc
	m.saves++
	return nil
}
func (m *memPersister) LoadCompany() (*domain.Company, error) { return m.company, nil }
func (m *memPersister) SaveCompany(c domain.Company) error    { m.company = &c; return nil }
func (m *memPersister) ExportFolder() (string, error)         { return m.folder, nil }
func (m *memPersister) SetExportFolder(path string) error     { m.folder = path; return nil }

func newTestStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{}
	s := New(p)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s, p
}

// ─── Load / Save ────────────────────────────────────────────────────────────

func TestLoad_EmptyStore(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.Counter(); got != 1 {
		t.Errorf("Counter() = %d, want 1 for fresh store", got)
	}
	if len(s.Invoices()) != 0 || len(s.Clients()) != 0 {
		t.Error("fresh store should be empty")
	}
}

func TestLoad_ExistingDocument(t *testing.T) {
	p := &memPersister{doc: &domain.Document{
		InvoiceNumber: 7,
		Clients:       []domain.Client{{ID: "c1", Name: "Acme"}},
		Invoices:      []domain.Invoice{{ID: "i1", InvoiceNo: "INV-202406-0006"}},
	}}
	s := New(p)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if s.Counter() != 7 {
		t.Errorf("Counter() = %d, want 7", s.Counter())
	}
	if len(s.Clients()) != 1 || len(s.Invoices()) != 1 {
		t.Error("persisted records not loaded")
	}
}

func TestLoad_ZeroCounterNormalized(t *testing.T) {
	p := &memPersister{doc: &domain.Document{InvoiceNumber: 0}}
	s := New(p)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if s.Counter() != 1 {
		t.Errorf("Counter() = %d, want 1", s.Counter())
	}
}

func TestSave_WholeDocument(t *testing.T) {
	s, p := newTestStore(t)
	s.SetCounter(9)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if p.doc == nil || p.doc.InvoiceNumber != 9 {
		t.Errorf("persisted counter = %+v, want 9", p.doc)
	}
}

// ─── Counter ────────────────────────────────────────────────────────────────

func TestAdvanceCounter_Persists(t *testing.T) {
	s, p := newTestStore(t)
	if err := s.AdvanceCounter(); err != nil {
		t.Fatal(err)
	}
	if s.Counter() != 2 {
		t.Errorf("Counter() = %d, want 2", s.Counter())
	}
	if p.doc == nil || p.doc.InvoiceNumber != 2 {
		t.Error("AdvanceCounter must persist the document")
	}
}

func TestSetCounter_MemoryOnly(t *testing.T) {
	s, p := newTestStore(t)
	s.SetCounter(42)
	if p.saves != 0 {
		t.Error("SetCounter must not persist by itself")
	}
	if s.Counter() != 42 {
		t.Errorf("Counter() = %d, want 42", s.Counter())
	}
}

// ─── Invoices ───────────────────────────────────────────────────────────────

func TestUpsertInvoice_CreateThenReplace(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.UpsertInvoice(domain.Invoice{ID: "i1", Client: "Acme", Status: domain.StatusDraft})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	created, err = s.UpsertInvoice(domain.Invoice{ID: "i1", Client: "Acme", Status: domain.StatusFinal})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second upsert of same id should replace, not create")
	}
	if n := len(s.Invoices()); n != 1 {
		t.Fatalf("invoice count = %d, want 1", n)
	}
	inv, ok := s.Invoice("i1")
	if !ok || inv.Status != domain.StatusFinal {
		t.Errorf("upsert did not replace: %+v", inv)
	}
}

func TestFinalInvoices_ExcludesDrafts(t *testing.T) {
	s, _ := newTestStore(t)
	s.UpsertInvoice(domain.Invoice{ID: "d1", Status: domain.StatusDraft})
	s.UpsertInvoice(domain.Invoice{ID: "f1", Status: domain.StatusFinal})

	finals := s.FinalInvoices()
	if len(finals) != 1 || finals[0].ID != "f1" {
		t.Errorf("FinalInvoices() = %+v, want only f1", finals)
	}
}

// ─── Clients ────────────────────────────────────────────────────────────────

func TestAddClients_DedupeCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)
	added, err := s.AddClients([]domain.Client{
		{ID: "c1", Name: "Acme"},
		{ID: "c2", Name: "ACME"}, // duplicate within batch
		{ID: "c3", Name: "Globex"},
		{ID: "c4", Name: ""}, // nameless rows are skipped
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	added, err = s.AddClients([]domain.Client{{ID: "c5", Name: "acme"}})
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0 for existing name", added)
	}
}

func TestRenameClient(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddClients([]domain.Client{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}})

	if err := s.RenameClient("c1", "Acme Trading"); err != nil {
		t.Fatalf("RenameClient() error: %v", err)
	}
	c, _ := s.Client("c1")
	if c.Name != "Acme Trading" {
		t.Errorf("name = %q, want %q", c.Name, "Acme Trading")
	}

	if err := s.RenameClient("c1", "GLOBEX"); err != domain.ErrClientExists {
		t.Errorf("rename onto existing name = %v, want ErrClientExists", err)
	}
	if err := s.RenameClient("missing", "X"); err != domain.ErrClientNotFound {
		t.Errorf("rename of missing id = %v, want ErrClientNotFound", err)
	}
}

func TestDeleteClients_NoCascade(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddClients([]domain.Client{{ID: "c1", Name: "Acme"}})
	s.UpsertInvoice(domain.Invoice{ID: "f1", Client: "Acme", Status: domain.StatusFinal})

	removed, err := s.DeleteClients("c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0].Name != "Acme" {
		t.Errorf("removed = %+v, want Acme", removed)
	}
	// The historical invoice keeps its name snapshot.
	if len(s.FinalInvoices()) != 1 {
		t.Error("deleting a client must not delete its invoices")
	}
	if !s.HasFinalInvoices("acme") {
		t.Error("HasFinalInvoices should match the orphaned snapshot case-insensitively")
	}
}
