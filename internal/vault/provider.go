// Package vault defines the journal vault file-system abstraction.
package vault

import "github.com/starford/dagaz/internal/models"

// Provider is the read-side interface over a vault of Markdown files.
// The panel never writes journal content; authoring belongs to the host
// editor.
type Provider interface {
	// Resolve returns a handle to the file at path (relative to vault root),
	// or nil when no such file exists. Only genuine I/O failures are errors.
	Resolve(path string) (*models.FileRef, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// List returns metadata for every .md file under dir (relative to vault root).
	List(dir string) ([]models.FileMeta, error)
}
