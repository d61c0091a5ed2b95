// Package lifecycle drives the invoice state machine: start, edit, autosave,
// draft commit, and final export. It owns the single in-progress candidate
// and enforces the ordering that makes exports atomic — the artifact is
// rendered and saved before any record or counter mutation, so a failed or
// cancelled export leaves no trace.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fatoora-app/fatoora/internal/app/dupcheck"
	"github.com/fatoora-app/fatoora/internal/app/numbering"
	"github.com/fatoora-app/fatoora/internal/app/totals"
	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/infra/observability"
	"github.com/fatoora-app/fatoora/internal/logger"
	"github.com/fatoora-app/fatoora/internal/store"
)

// DuplicateError reports a commit refused by the duplicate guard. The Reason
// is machine-readable; the Message is display-ready.
type DuplicateError struct {
	Reason      dupcheck.Reason
	Message     string
	Conflicting *domain.Invoice
}

func (e *DuplicateError) Error() string { return e.Message }

// Options configures a Controller. Zero fields fall back to defaults.
type Options struct {
	Renderer  domain.Renderer
	Artifacts domain.ArtifactStore

	// FileName builds the artifact filename from the client name and the
	// invoice number. Nil gets a plain "<number>_<client>.pdf".
	FileName func(client, invoiceNo string) string

	Metrics  *observability.Metrics
	VATRate  float64 // 0 means totals.DefaultVATRate
	Currency string  // "" means "AED"
	DueDays  int     // 0 means 30
	Now      func() time.Time
}

// Controller owns the in-progress invoice and mediates every mutation of
// the record store that stems from authoring.
type Controller struct {
	mu sync.Mutex

	store     *store.Store
	alloc     *numbering.Allocator
	guard     *dupcheck.Guard
	calc      *totals.Calculator
	renderer  domain.Renderer
	artifacts domain.ArtifactStore
	fileName  func(client, invoiceNo string) string
	metrics   *observability.Metrics
	log       zerolog.Logger
	now       func() time.Time

	currency string
	dueDays  int

	candidate  *domain.Invoice
	editing    bool
	originalID string
}

// New builds a Controller over the given record store.
func New(st *store.Store, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.VATRate == 0 {
		opts.VATRate = totals.DefaultVATRate
	}
	if opts.Currency == "" {
		opts.Currency = "AED"
	}
	if opts.DueDays == 0 {
		opts.DueDays = 30
	}
	if opts.FileName == nil {
		opts.FileName = func(client, invoiceNo string) string {
			return fmt.Sprintf("%s_%s.pdf", invoiceNo, client)
		}
	}

	return &Controller{
		store:     st,
		alloc:     numbering.New(st).WithClock(opts.Now),
		guard:     dupcheck.New(st),
		calc:      totals.NewCalculator(opts.VATRate),
		renderer:  opts.Renderer,
		artifacts: opts.Artifacts,
		fileName:  opts.FileName,
		metrics:   opts.Metrics,
		log:       logger.WithComponent("lifecycle"),
		now:       opts.Now,
		currency:  opts.Currency,
		dueDays:   opts.DueDays,
	}
}

// Allocator exposes the numbering allocator for boot-time recovery.
func (c *Controller) Allocator() *numbering.Allocator { return c.alloc }

// ─── Candidate Management ───────────────────────────────────────────────────

// StartNew begins a fresh invoice: new id, the next unclaimed number for the
// current month, today's date, and a due date dueDays out. The number is a
// preview — nothing is claimed until a commit persists.
func (c *Controller) StartNew() domain.Invoice {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	inv := domain.Invoice{
		ID:          uuid.NewString(),
		InvoiceNo:   c.alloc.Format(),
		Date:        now.Format("2006-01-02"),
		DueDate:     now.AddDate(0, 0, c.dueDays).Format("2006-01-02"),
		Currency:    c.currency,
		PaymentMode: "Bank Transfer",
		Status:      domain.StatusDraft,
		CreatedAt:   now.Format(time.RFC3339),
	}
	if company, err := c.store.Persister().LoadCompany(); err == nil && company != nil {
		inv.Company = *company
	}
	c.candidate = &inv
	c.editing = false
	c.originalID = ""

	c.log.Debug().Str("invoice_no", inv.InvoiceNo).Msg("started new invoice")
	return inv
}

// LoadForEdit loads an exported invoice back into the editor. Drafts cannot
// be edited this way; they are resumed through the regular draft flow.
func (c *Controller) LoadForEdit(id string) (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, ok := c.store.Invoice(id)
	if !ok {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	if !inv.IsFinal() {
		return domain.Invoice{}, domain.ErrNotFinal
	}

	copied := inv
	copied.Items = append([]domain.LineItem(nil), inv.Items...)
	c.candidate = &copied
	c.editing = true
	c.originalID = inv.ID

	c.log.Debug().Str("invoice_no", inv.InvoiceNo).Msg("loaded invoice for editing")
	return copied, nil
}

// ResumeDraft loads a saved draft back into the editor under its own id, so
// a later commit updates the draft in place.
func (c *Controller) ResumeDraft(id string) (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, ok := c.store.Invoice(id)
	if !ok {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	if inv.IsFinal() {
		return domain.Invoice{}, domain.ErrNotDraft
	}

	copied := inv
	copied.Items = append([]domain.LineItem(nil), inv.Items...)
	copied.Status = domain.StatusDraft
	c.candidate = &copied
	c.editing = false
	c.originalID = ""

	return copied, nil
}

// Candidate returns a copy of the in-progress invoice.
func (c *Controller) Candidate() (domain.Invoice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.candidate == nil {
		return domain.Invoice{}, false
	}
	copied := *c.candidate
	copied.Items = append([]domain.LineItem(nil), c.candidate.Items...)
	return copied, true
}

// Editing reports whether the candidate was loaded from an exported invoice.
func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// SetCandidate applies editor input to the in-progress invoice: line items
// are renumbered 1..N, per-line VAT and totals recomputed, aggregates summed
// from the rounded lines, and the amount-in-words regenerated.
func (c *Controller) SetCandidate(in Input) (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.candidate == nil {
		return domain.Invoice{}, domain.ErrNoCandidate
	}

	inv := c.candidate
	inv.InvoiceNo = in.InvoiceNo
	inv.Date = in.Date
	inv.DueDate = in.DueDate
	inv.PaymentMode = in.PaymentMode
	if in.Currency != "" {
		inv.Currency = in.Currency
	}
	inv.Company = in.Company
	inv.Client = in.Client

	items := make([]domain.LineItem, 0, len(in.Items))
	for i, li := range in.Items {
		items = append(items, domain.LineItem{
			Sequence:    i + 1,
			Service:     li.Service,
			Description: li.Description,
			Amount:      li.Amount,
		})
	}
	inv.Items = c.calc.Apply(items)
	inv.Subtotal, inv.VATTotal, inv.GrandTotal = c.calc.Aggregate(inv.Items)
	inv.AmountInWords = totals.AmountInWords(inv.GrandTotal)

	copied := *inv
	copied.Items = append([]domain.LineItem(nil), inv.Items...)
	return copied, nil
}

// AdoptManualNumber accepts a hand-typed invoice number: the candidate takes
// the value verbatim, and when it parses as INV-YYYYMM-NNNN the monthly
// counter jumps past it so the next generated number does not collide.
// Validity of the number itself is the exporter's problem, not the typist's.
func (c *Controller) AdoptManualNumber(value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.candidate != nil {
		c.candidate.InvoiceNo = value
	}
	adopted := c.alloc.AdoptManual(value)
	if adopted {
		c.metrics.SetCounter(c.store.Counter())
	}
	return adopted
}

// Cancel discards the in-progress invoice without touching the record store.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.candidate = nil
	c.editing = false
	c.originalID = ""
}

// ─── Commits ────────────────────────────────────────────────────────────────

// CommitDraft validates and saves the candidate as a draft. The numbering
// counter advances only the first time this id is persisted, so repeated
// draft saves of the same invoice burn one number, not many.
func (c *Controller) CommitDraft() (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, err := c.prepareLocked(domain.StatusDraft)
	if err != nil {
		c.metrics.Commit("draft", commitOutcome(err))
		return domain.Invoice{}, err
	}

	created, err := c.store.UpsertInvoice(*inv)
	if err != nil {
		c.metrics.Commit("draft", "error")
		return domain.Invoice{}, err
	}
	if created {
		if err := c.alloc.Advance(); err != nil {
			c.metrics.Commit("draft", "error")
			return domain.Invoice{}, err
		}
	}
	c.metrics.Commit("draft", "ok")
	c.metrics.SetCounter(c.store.Counter())

	c.log.Info().Str("invoice_no", inv.InvoiceNo).Bool("created", created).Msg("draft saved")
	return *inv, nil
}

// CommitFinal renders the artifact, saves it, and only then marks the
// invoice as exported. A render or save failure — including the user
// cancelling the save — leaves the store and the counter untouched.
func (c *Controller) CommitFinal() (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, err := c.prepareLocked(domain.StatusFinal)
	if err != nil {
		c.metrics.Commit("final", commitOutcome(err))
		return domain.Invoice{}, err
	}

	if c.renderer == nil || c.artifacts == nil {
		c.metrics.Commit("final", "error")
		return domain.Invoice{}, errors.New("no renderer configured for export")
	}

	var client *domain.Client
	if rec, ok := c.store.ClientByName(inv.Client); ok {
		client = &rec
	}

	artifact, err := c.renderer.Render(*inv, client)
	if err != nil {
		c.metrics.Commit("final", "error")
		return domain.Invoice{}, fmt.Errorf("render invoice: %w", err)
	}
	if err := c.artifacts.Save(artifact, c.fileName(inv.Client, inv.InvoiceNo)); err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			c.log.Debug().Str("invoice_no", inv.InvoiceNo).Msg("export cancelled")
			c.metrics.Commit("final", "cancelled")
			return domain.Invoice{}, domain.ErrCancelled
		}
		c.metrics.Commit("final", "error")
		return domain.Invoice{}, fmt.Errorf("save artifact: %w", err)
	}

	if c.editing {
		// Edits overwrite the original record and never touch the counter.
		inv.ID = c.originalID
		if _, err := c.store.UpsertInvoice(*inv); err != nil {
			c.metrics.Commit("final", "error")
			return domain.Invoice{}, err
		}
	} else {
		if _, err := c.store.UpsertInvoice(*inv); err != nil {
			c.metrics.Commit("final", "error")
			return domain.Invoice{}, err
		}
		if err := c.alloc.Advance(); err != nil {
			c.metrics.Commit("final", "error")
			return domain.Invoice{}, err
		}
	}
	c.metrics.Commit("final", "ok")
	c.metrics.ExportRendered()
	c.metrics.SetCounter(c.store.Counter())

	committed := *inv
	c.candidate = nil
	c.editing = false
	c.originalID = ""

	c.log.Info().Str("invoice_no", committed.InvoiceNo).Str("client", committed.Client).Msg("invoice exported")
	return committed, nil
}

// AutoSave persists the candidate as a draft when it is currently valid and
// unblocked, and quietly does nothing otherwise. Only storage failures
// surface as errors.
func (c *Controller) AutoSave() (saved bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.candidate == nil {
		return false, nil
	}
	inv, err := c.prepareLocked(domain.StatusDraft)
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) || isValidationError(err) {
			c.metrics.Autosave("skipped")
			return false, nil
		}
		c.metrics.Autosave("error")
		return false, err
	}

	created, err := c.store.UpsertInvoice(*inv)
	if err != nil {
		c.metrics.Autosave("error")
		return false, err
	}
	if created {
		if err := c.alloc.Advance(); err != nil {
			c.metrics.Autosave("error")
			return false, err
		}
	}
	c.metrics.Autosave("saved")
	c.metrics.SetCounter(c.store.Counter())
	return true, nil
}

// prepareLocked validates the candidate, runs the duplicate guard, and
// returns the candidate stamped with the target status and fresh timestamps.
// Callers hold c.mu.
func (c *Controller) prepareLocked(status domain.Status) (*domain.Invoice, error) {
	if c.candidate == nil {
		return nil, domain.ErrNoCandidate
	}
	inv := c.candidate
	if err := Validate(inv); err != nil {
		return nil, err
	}

	excludeID := ""
	if c.editing {
		excludeID = c.originalID
	}
	if res := c.guard.Check(inv.Client, inv.InvoiceNo, inv.Date, excludeID); res.Duplicate {
		c.metrics.DuplicateBlock(string(res.Reason))
		c.log.Warn().
			Str("reason", string(res.Reason)).
			Str("invoice_no", inv.InvoiceNo).
			Msg("commit blocked by duplicate guard")
		return nil, &DuplicateError{
			Reason:      res.Reason,
			Message:     res.Message,
			Conflicting: res.Conflicting,
		}
	}

	inv.Status = status
	now := c.now().Format(time.RFC3339)
	if inv.CreatedAt == "" {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	return inv, nil
}

func commitOutcome(err error) string {
	var dup *DuplicateError
	switch {
	case errors.As(err, &dup):
		return "blocked"
	case isValidationError(err):
		return "invalid"
	default:
		return "error"
	}
}
