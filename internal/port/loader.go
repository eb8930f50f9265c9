package port

import "ragpipe/internal/domain"

// Loader reads one family of file formats into a Document.
type Loader interface {
	// Supports reports whether the loader claims filename.
	Supports(filename string) bool

	// Load reads the file at path. It must not modify the filesystem.
	Load(path string) (domain.Document, error)
}
