// Package store holds the in-memory invoice and client collections and the
// monthly counter, serialized whole-document through an injected Persister
// on every mutation. There is exactly one writer process; the mutex only
// serializes the daemon's HTTP handlers against the auto-save ticker.
package store

import (
	"fmt"
	"sync"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// Store is the record store for one local invoice database.
type Store struct {
	mu       sync.Mutex
	persist  domain.Persister
	counter  int
	clients  []domain.Client
	invoices []domain.Invoice
}

// New creates a store backed by the given persister. Call Load before use.
func New(p domain.Persister) *Store {
	return &Store{persist: p, counter: 1}
}

// Persister exposes the backing persister for non-document state such as
// the company profile and the export-folder preference.
func (s *Store) Persister() domain.Persister { return s.persist }

// Load replaces in-memory state with the persisted document. A missing
// document initializes an empty store with counter 1.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.persist.LoadDocument()
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		s.counter = 1
		s.clients = nil
		s.invoices = nil
		return nil
	}
	s.counter = doc.InvoiceNumber
	if s.counter < 1 {
		s.counter = 1
	}
	s.clients = doc.Clients
	s.invoices = doc.Invoices
	return nil
}

// Save serializes the whole document. Exposed for callers that batch
// several memory-only mutations (counter adoption, for instance).
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	doc := &domain.Document{
		InvoiceNumber: s.counter,
		Clients:       s.clients,
		Invoices:      s.invoices,
	}
	if err := s.persist.SaveDocument(doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// ─── Counter ────────────────────────────────────────────────────────────────

// Counter returns the current monthly counter value.
func (s *Store) Counter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// SetCounter updates the counter in memory only. The new value reaches disk
// with the next Save — manual adoption on field blur does not persist by
// itself.
func (s *Store) SetCounter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = n
}

// AdvanceCounter increments the counter by exactly one and persists the
// document.
func (s *Store) AdvanceCounter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.saveLocked()
}

// ─── Invoices ───────────────────────────────────────────────────────────────

// Invoices returns a copy of all invoices, drafts included.
func (s *Store) Invoices() []domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Invoice, len(s.invoices))
	copy(out, s.invoices)
	return out
}

// FinalInvoices returns a copy of all exported invoices.
func (s *Store) FinalInvoices() []domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invoice
	for _, inv := range s.invoices {
		if inv.IsFinal() {
			out = append(out, inv)
		}
	}
	return out
}

// Invoice looks up an invoice by id.
func (s *Store) Invoice(id string) (domain.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return domain.Invoice{}, false
}

// UpsertInvoice replaces the invoice with the same id or appends a new one,
// then persists. Returns whether a new record was created — the lifecycle
// controller advances the counter only on first persistence of an id.
func (s *Store) UpsertInvoice(inv domain.Invoice) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == inv.ID {
			s.invoices[i] = inv
			return false, s.saveLocked()
		}
	}
	s.invoices = append(s.invoices, inv)
	return true, s.saveLocked()
}

// ─── Clients ────────────────────────────────────────────────────────────────

// Clients returns a copy of all clients.
func (s *Store) Clients() []domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// Client looks up a client by id.
func (s *Store) Client(id string) (domain.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Client{}, false
}

// ClientByName looks up a client by case-insensitive name.
func (s *Store) ClientByName(name string) (domain.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if domain.SameName(c.Name, name) {
			return c, true
		}
	}
	return domain.Client{}, false
}

// AddClients inserts the given batch, skipping entries whose name already
// exists case-insensitively (in the store or earlier in the batch), then
// persists. Returns how many were actually added.
func (s *Store) AddClients(batch []domain.Client) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range batch {
		if c.Name == "" || s.hasNameLocked(c.Name) {
			continue
		}
		s.clients = append(s.clients, c)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.saveLocked()
}

func (s *Store) hasNameLocked(name string) bool {
	for _, c := range s.clients {
		if domain.SameName(c.Name, name) {
			return true
		}
	}
	return false
}

// RenameClient changes a client's name. The new name must not collide with
// another client, case-insensitively. Historical invoices keep the old name
// snapshot — rename is not retroactive.
func (s *Store) RenameClient(id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *domain.Client
	for i := range s.clients {
		if s.clients[i].ID == id {
			target = &s.clients[i]
			continue
		}
		if domain.SameName(s.clients[i].Name, newName) {
			return domain.ErrClientExists
		}
	}
	if target == nil {
		return domain.ErrClientNotFound
	}
	target.Name = newName
	return s.saveLocked()
}

// DeleteClients removes the clients with the given ids and persists.
// Invoices referencing the deleted names are untouched — deletion never
// cascades. The removed records are returned so callers can warn about
// names that still appear on exported invoices.
func (s *Store) DeleteClients(ids ...string) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	var kept []domain.Client
	var removed []domain.Client
	for _, c := range s.clients {
		if drop[c.ID] {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	s.clients = kept
	return removed, s.saveLocked()
}

// HasFinalInvoices reports whether any exported invoice carries the given
// client name (case-insensitive).
func (s *Store) HasFinalInvoices(clientName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.IsFinal() && domain.SameName(inv.Client, clientName) {
			return true
		}
	}
	return false
}
