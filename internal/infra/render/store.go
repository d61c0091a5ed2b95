package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DirStore writes artifacts into an export directory, creating it on first
// use. The directory is resolved on every save, so a changed folder
// preference reaches the next export without a restart.
type DirStore struct {
	resolve func() string
}

// NewDirStore returns a store rooted at a fixed dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{resolve: func() string { return dir }}
}

// NewResolvedDirStore returns a store whose directory is looked up through
// fn at save time.
func NewResolvedDirStore(fn func() string) *DirStore { return &DirStore{resolve: fn} }

// Dir returns the current export directory.
func (s *DirStore) Dir() string { return s.resolve() }

// Save writes the artifact under filename inside the export directory.
func (s *DirStore) Save(artifact []byte, filename string) error {
	dir := s.resolve()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export folder: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, artifact, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds the export filename: sanitized invoice number and client
// name joined with a UTC timestamp, so repeated exports never clobber each
// other.
func FileName(client, invoiceNo string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf",
		unsafeChars.ReplaceAllString(invoiceNo, "_"),
		unsafeChars.ReplaceAllString(client, "_"),
		now.UTC().Format("20060102T150405"),
	)
}
