package domain

import "io"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Persister abstracts the key-value document store. The whole document is
// written on every save — there are no partial writes to reason about.
type Persister interface {
	// LoadDocument reads the persisted document, or (nil, nil) when no
	// document has been saved yet.
	LoadDocument() (*Document, error)

	// SaveDocument serializes and stores the whole document.
	SaveDocument(doc *Document) error

	// LoadCompany reads the saved company profile, or (nil, nil) when unset.
	LoadCompany() (*Company, error)

	// SaveCompany stores the company profile.
	SaveCompany(c Company) error

	// ExportFolder returns the saved export-folder preference ("" when unset).
	ExportFolder() (string, error)

	// SetExportFolder stores the export-folder preference.
	SetExportFolder(path string) error
}

// Renderer produces a printable artifact for an assembled invoice.
// The client record, when known, supplies phone/address for the bill-to
// block; nil means the name snapshot has no matching client anymore.
type Renderer interface {
	Render(inv Invoice, client *Client) ([]byte, error)
}

// ArtifactStore persists a rendered artifact under the given filename.
// Implementations may fail or report ErrCancelled when a user aborts an
// interactive save; the lifecycle controller treats cancellation as a no-op.
type ArtifactStore interface {
	Save(artifact []byte, filename string) error
}

// ClientImporter extracts (name, phone, address) rows from tabular input.
// Deduplication against existing clients happens in the record store.
type ClientImporter interface {
	ImportClients(r io.Reader) ([]ImportedClient, error)
}
