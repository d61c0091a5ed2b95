package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/store"
)

// ─── Fixtures ───────────────────────────────────────────────────────────────

type memPersister struct {
	doc     *domain.Document
	company *domain.Company
	folder  string
}

func (m *memPersister) LoadDocument() (*domain.Document, error) { return m.doc, nil }
func (m *memPersister) SaveDocument(doc *domain.Document) error { m.doc = doc; return nil }
func (m *memPersister) LoadCompany() (*domain.Company, error)   { return m.company, nil }
func (m *memPersister) SaveCompany(c domain.Company) error      { m.company = &c; return nil }
func (m *memPersister) ExportFolder() (string, error)           { return m.folder, nil }
func (m *memPersister) SetExportFolder(path string) error       { m.folder = path; return nil }

type fakeRenderer struct {
	fail bool
}

func (f *fakeRenderer) Render(inv domain.Invoice, client *domain.Client) ([]byte, error) {
	if f.fail {
		return nil, errors.New("render failed")
	}
	return []byte("%PDF " + inv.InvoiceNo), nil
}

type fakeArtifacts struct {
	saved  []string
	cancel bool
	fail   bool
}

func (f *fakeArtifacts) Save(artifact []byte, filename string) error {
	if f.cancel {
		return domain.ErrCancelled
	}
	if f.fail {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, filename)
	return nil
}

var june2024 = func() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func newTestController(t *testing.T) (*Controller, *store.Store, *fakeArtifacts) {
	t.Helper()
	st := store.New(&memPersister{})
	if err := st.Load(); err != nil {
		t.Fatal(err)
	}
	artifacts := &fakeArtifacts{}
	c := New(st, Options{
		Renderer:  &fakeRenderer{},
		Artifacts: artifacts,
		Now:       june2024,
	})
	return c, st, artifacts
}

func validInput(client string) Input {
	return Input{
		Date:        "2024-06-15",
		DueDate:     "2024-07-15",
		PaymentMode: "Bank Transfer",
		Company:     domain.Company{Name: "Fatoora FZ LLC", TRN: "100123456700003"},
		Client:      client,
		Items: []LineInput{
			{Service: "Consulting", Description: "June retainer", Amount: 1000},
		},
	}
}

func startAndFill(t *testing.T, c *Controller, client string) domain.Invoice {
	t.Helper()
	inv := c.StartNew()
	in := validInput(client)
	in.InvoiceNo = inv.InvoiceNo
	filled, err := c.SetCandidate(in)
	if err != nil {
		t.Fatal(err)
	}
	return filled
}

// ─── Start / SetCandidate ───────────────────────────────────────────────────

func TestStartNew_PreviewsCurrentMonthNumber(t *testing.T) {
	c, _, _ := newTestController(t)

	inv := c.StartNew()
	if inv.InvoiceNo != "INV-202406-0001" {
		t.Errorf("InvoiceNo = %q, want INV-202406-0001", inv.InvoiceNo)
	}
	if inv.Date != "2024-06-15" || inv.DueDate != "2024-07-15" {
		t.Errorf("dates = %q/%q, want today and +30 days", inv.Date, inv.DueDate)
	}
	if inv.Status != domain.StatusDraft {
		t.Errorf("Status = %q, want draft", inv.Status)
	}
	if inv.ID == "" {
		t.Error("ID must be assigned at start")
	}
}

func TestSetCandidate_DerivesTotals(t *testing.T) {
	c, _, _ := newTestController(t)
	c.StartNew()

	in := validInput("Acme")
	in.Items = []LineInput{
		{Service: "Consulting", Amount: 1000},
		{Service: "Hosting", Amount: 234.50},
	}
	inv, err := c.SetCandidate(in)
	if err != nil {
		t.Fatal(err)
	}

	if inv.Items[0].Sequence != 1 || inv.Items[1].Sequence != 2 {
		t.Errorf("sequences = %d,%d, want 1,2", inv.Items[0].Sequence, inv.Items[1].Sequence)
	}
	if inv.Items[0].VAT != 50 || inv.Items[0].Total != 1050 {
		t.Errorf("line 1 = vat %v total %v, want 50/1050", inv.Items[0].VAT, inv.Items[0].Total)
	}
	if inv.Subtotal != 1234.50 {
		t.Errorf("Subtotal = %v, want 1234.50", inv.Subtotal)
	}
	if inv.GrandTotal != 1296.23 {
		t.Errorf("GrandTotal = %v, want 1296.23", inv.GrandTotal)
	}
	if inv.AmountInWords == "" {
		t.Error("AmountInWords must be derived")
	}
}

// ─── Draft Commits ──────────────────────────────────────────────────────────

func TestCommitDraft_AdvancesCounterOnFirstPersistOnly(t *testing.T) {
	c, st, _ := newTestController(t)
	startAndFill(t, c, "Acme")

	if _, err := c.CommitDraft(); err != nil {
		t.Fatal(err)
	}
	if st.Counter() != 2 {
		t.Errorf("counter after first draft save = %d, want 2", st.Counter())
	}

	// Saving the same invoice again must not burn another number.
	if _, err := c.CommitDraft(); err != nil {
		t.Fatal(err)
	}
	if st.Counter() != 2 {
		t.Errorf("counter after re-save = %d, want 2", st.Counter())
	}
	if len(st.Invoices()) != 1 {
		t.Errorf("invoices = %d, want 1", len(st.Invoices()))
	}
}

func TestCommitDraft_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	c, st, _ := newTestController(t)
	c.StartNew()
	in := validInput("") // no client
	if _, err := c.SetCandidate(in); err != nil {
		t.Fatal(err)
	}

	_, err := c.CommitDraft()
	if !errors.Is(err, domain.ErrClientRequired) {
		t.Fatalf("err = %v, want ErrClientRequired", err)
	}
	if len(st.Invoices()) != 0 || st.Counter() != 1 {
		t.Error("failed commit must not mutate the store")
	}
}

func TestCommitDraft_WithoutCandidate(t *testing.T) {
	c, _, _ := newTestController(t)
	if _, err := c.CommitDraft(); !errors.Is(err, domain.ErrNoCandidate) {
		t.Errorf("err = %v, want ErrNoCandidate", err)
	}
}

// ─── Final Commits ──────────────────────────────────────────────────────────

func TestCommitFinal_ExportsAndClaims(t *testing.T) {
	c, st, artifacts := newTestController(t)
	startAndFill(t, c, "Acme")

	committed, err := c.CommitFinal()
	if err != nil {
		t.Fatal(err)
	}
	if committed.Status != domain.StatusFinal {
		t.Errorf("Status = %q, want final", committed.Status)
	}
	if len(artifacts.saved) != 1 {
		t.Fatalf("artifacts saved = %d, want 1", len(artifacts.saved))
	}
	if st.Counter() != 2 {
		t.Errorf("counter = %d, want 2", st.Counter())
	}
	if _, ok := c.Candidate(); ok {
		t.Error("candidate must be cleared after export")
	}
	finals := st.FinalInvoices()
	if len(finals) != 1 || finals[0].InvoiceNo != committed.InvoiceNo {
		t.Errorf("finals = %+v, want the exported invoice", finals)
	}
}

func TestCommitFinal_DuplicateClientMonthBlocked(t *testing.T) {
	c, st, _ := newTestController(t)
	startAndFill(t, c, "Acme")
	if _, err := c.CommitFinal(); err != nil {
		t.Fatal(err)
	}

	startAndFill(t, c, "ACME") // same client, different case, same month
	_, err := c.CommitFinal()

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateError", err)
	}
	if string(dup.Reason) != "client_same_month" {
		t.Errorf("Reason = %q, want client_same_month", dup.Reason)
	}
	if len(st.FinalInvoices()) != 1 {
		t.Error("blocked commit must not create a record")
	}
}

func TestCommitFinal_CancelIsNoOp(t *testing.T) {
	c, st, artifacts := newTestController(t)
	artifacts.cancel = true
	startAndFill(t, c, "Acme")

	_, err := c.CommitFinal()
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if len(st.Invoices()) != 0 || st.Counter() != 1 {
		t.Error("cancelled export must not mutate the store")
	}
	if _, ok := c.Candidate(); !ok {
		t.Error("candidate must survive a cancelled export")
	}
}

func TestCommitFinal_RenderFailureLeavesStoreUntouched(t *testing.T) {
	st := store.New(&memPersister{})
	if err := st.Load(); err != nil {
		t.Fatal(err)
	}
	c := New(st, Options{
		Renderer:  &fakeRenderer{fail: true},
		Artifacts: &fakeArtifacts{},
		Now:       june2024,
	})
	startAndFill(t, c, "Acme")

	if _, err := c.CommitFinal(); err == nil {
		t.Fatal("expected render error")
	}
	if len(st.Invoices()) != 0 || st.Counter() != 1 {
		t.Error("failed render must not mutate the store")
	}
}

// ─── Edit Mode ──────────────────────────────────────────────────────────────

func TestEdit_OverwritesWithoutAdvancingCounter(t *testing.T) {
	c, st, _ := newTestController(t)
	startAndFill(t, c, "Acme")
	exported, err := c.CommitFinal()
	if err != nil {
		t.Fatal(err)
	}
	counterAfterExport := st.Counter()

	if _, err := c.LoadForEdit(exported.ID); err != nil {
		t.Fatal(err)
	}
	in := validInput("Acme")
	in.InvoiceNo = exported.InvoiceNo
	in.Items = []LineInput{{Service: "Consulting", Amount: 2000}}
	if _, err := c.SetCandidate(in); err != nil {
		t.Fatal(err)
	}

	updated, err := c.CommitFinal()
	if err != nil {
		t.Fatalf("re-export of edited invoice must pass its own guard check: %v", err)
	}
	if updated.ID != exported.ID {
		t.Errorf("edit produced id %q, want original %q", updated.ID, exported.ID)
	}
	if st.Counter() != counterAfterExport {
		t.Errorf("counter = %d, want unchanged %d", st.Counter(), counterAfterExport)
	}
	if got := len(st.Invoices()); got != 1 {
		t.Errorf("invoices = %d, want 1 (overwrite, not append)", got)
	}
	final, _ := st.Invoice(exported.ID)
	if final.GrandTotal != 2100 {
		t.Errorf("GrandTotal = %v, want 2100", final.GrandTotal)
	}
}

func TestLoadForEdit_RejectsDrafts(t *testing.T) {
	c, _, _ := newTestController(t)
	startAndFill(t, c, "Acme")
	draft, err := c.CommitDraft()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.LoadForEdit(draft.ID); !errors.Is(err, domain.ErrNotFinal) {
		t.Errorf("err = %v, want ErrNotFinal", err)
	}
	if _, err := c.LoadForEdit("missing"); !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Errorf("err = %v, want ErrInvoiceNotFound", err)
	}
}

func TestResumeDraft_ReusesID(t *testing.T) {
	c, st, _ := newTestController(t)
	startAndFill(t, c, "Acme")
	draft, err := c.CommitDraft()
	if err != nil {
		t.Fatal(err)
	}
	c.Cancel()

	resumed, err := c.ResumeDraft(draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.ID != draft.ID {
		t.Errorf("resumed id = %q, want %q", resumed.ID, draft.ID)
	}
	if _, err := c.CommitDraft(); err != nil {
		t.Fatal(err)
	}
	if len(st.Invoices()) != 1 {
		t.Errorf("invoices = %d, want 1 (resume must not fork)", len(st.Invoices()))
	}
}

func TestResumeDraft_RejectsFinals(t *testing.T) {
	c, _, _ := newTestController(t)
	startAndFill(t, c, "Acme")
	final, err := c.CommitFinal()
	if err != nil {
		t.Fatal(err)
	}

	// Exported invoices go through the edit path, not resume.
	if _, err := c.ResumeDraft(final.ID); !errors.Is(err, domain.ErrNotDraft) {
		t.Errorf("err = %v, want ErrNotDraft", err)
	}
}

// ─── AutoSave ───────────────────────────────────────────────────────────────

func TestAutoSave_SkipsSilentlyWhenNotReady(t *testing.T) {
	c, st, _ := newTestController(t)

	// No candidate at all.
	if saved, err := c.AutoSave(); saved || err != nil {
		t.Errorf("AutoSave() = %v, %v, want false, nil", saved, err)
	}

	// Incomplete candidate.
	c.StartNew()
	if saved, err := c.AutoSave(); saved || err != nil {
		t.Errorf("AutoSave() on invalid candidate = %v, %v, want false, nil", saved, err)
	}
	if len(st.Invoices()) != 0 {
		t.Error("skipped autosave must not persist")
	}
}

func TestAutoSave_PersistsValidCandidate(t *testing.T) {
	c, st, _ := newTestController(t)
	startAndFill(t, c, "Acme")

	saved, err := c.AutoSave()
	if err != nil || !saved {
		t.Fatalf("AutoSave() = %v, %v, want true, nil", saved, err)
	}
	if len(st.Invoices()) != 1 || st.Counter() != 2 {
		t.Errorf("invoices = %d counter = %d, want 1/2", len(st.Invoices()), st.Counter())
	}

	// Second sweep re-saves without advancing.
	if _, err := c.AutoSave(); err != nil {
		t.Fatal(err)
	}
	if st.Counter() != 2 {
		t.Errorf("counter = %d, want 2", st.Counter())
	}
}

// ─── Manual Numbers ─────────────────────────────────────────────────────────

func TestAdoptManualNumber_JumpsCounter(t *testing.T) {
	c, st, _ := newTestController(t)
	c.StartNew()

	if !c.AdoptManualNumber("INV-202406-0042") {
		t.Fatal("well-formed number must be adopted")
	}
	if st.Counter() != 43 {
		t.Errorf("counter = %d, want 43", st.Counter())
	}
	inv, _ := c.Candidate()
	if inv.InvoiceNo != "INV-202406-0042" {
		t.Errorf("candidate number = %q, want the typed value", inv.InvoiceNo)
	}

	// Free-form values stick to the candidate without moving the counter.
	if c.AdoptManualNumber("CUSTOM-7") {
		t.Error("free-form number must not be adopted into the counter")
	}
	inv, _ = c.Candidate()
	if inv.InvoiceNo != "CUSTOM-7" {
		t.Errorf("candidate number = %q, want CUSTOM-7", inv.InvoiceNo)
	}
}

// ─── Validation ─────────────────────────────────────────────────────────────

func TestValidateTRN(t *testing.T) {
	tests := []struct {
		trn  string
		want error
	}{
		{"100123456700003", nil},
		{"1234567", nil},
		{"", domain.ErrTRNRequired},
		{"   ", domain.ErrTRNRequired},
		{"12345A7", domain.ErrTRNNotNumeric},
		{"123456", domain.ErrTRNLength},
		{"1234567890123456", domain.ErrTRNLength},
	}
	for _, tt := range tests {
		if got := ValidateTRN(tt.trn); !errors.Is(got, tt.want) && got != tt.want {
			t.Errorf("ValidateTRN(%q) = %v, want %v", tt.trn, got, tt.want)
		}
	}
}
