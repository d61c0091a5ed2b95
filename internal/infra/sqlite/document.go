package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// Storage keys. These names are a compatibility contract with existing
// state files and must not change.
const (
	keyDocument     = "uaeInvoiceSystem"
	keyCompany      = "companyDetails"
	keyExportFolder = "exportFolder"
)

// Persister implements domain.Persister over the key-value store. The
// document and the company profile are JSON entries; the export folder is
// stored as a plain string.
type Persister struct {
	db *DB
}

// NewPersister wraps an open database.
func NewPersister(db *DB) *Persister { return &Persister{db: db} }

// LoadDocument reads the invoice document, or (nil, nil) when none exists.
func (p *Persister) LoadDocument() (*domain.Document, error) {
	raw, ok, err := p.db.Get(keyDocument)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// SaveDocument serializes and stores the whole document.
func (p *Persister) SaveDocument(doc *domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return p.db.Set(keyDocument, string(raw))
}

// LoadCompany reads the saved company profile, or (nil, nil) when unset.
func (p *Persister) LoadCompany() (*domain.Company, error) {
	raw, ok, err := p.db.Get(keyCompany)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var c domain.Company
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode company: %w", err)
	}
	return &c, nil
}

// SaveCompany stores the company profile.
func (p *Persister) SaveCompany(c domain.Company) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode company: %w", err)
	}
	return p.db.Set(keyCompany, string(raw))
}

// ExportFolder returns the saved export-folder preference ("" when unset).
func (p *Persister) ExportFolder() (string, error) {
	raw, _, err := p.db.Get(keyExportFolder)
	return raw, err
}

// SetExportFolder stores the export-folder preference.
func (p *Persister) SetExportFolder(path string) error {
	return p.db.Set(keyExportFolder, path)
}
