// Package storage defines the file-system abstraction for manuscripts and
// uploaded media.
package storage

import "github.com/starford/shujia/internal/models"

// Provider is the interface for file operations under a storage root.
// All paths are relative to that root.
type Provider interface {
	// List returns metadata for every .txt and .md manuscript under dir.
	List(dir string) ([]models.ManuscriptMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path. A missing file yields an error
	// matching fs.ErrNotExist.
	Delete(path string) error
}
