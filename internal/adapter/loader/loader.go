// Package loader reads raw files of the supported formats into documents.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// extLoader is the shared extension matcher behind every loader.
type extLoader struct {
	exts []string
}

func (l extLoader) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range l.exts {
		if ext == e {
			return true
		}
	}
	return false
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrLoad, path, err)
	}
	return data, nil
}

func newDocument(path, content string) domain.Document {
	return domain.NewDocument(filepath.Base(path), content)
}

// Registry selects a loader by first match in registration order.
type Registry struct {
	loaders []port.Loader
}

func NewRegistry(loaders ...port.Loader) *Registry {
	return &Registry{loaders: loaders}
}

// Default returns a registry with every built-in loader.
func Default() *Registry {
	return NewRegistry(
		NewTextLoader(),
		NewNotebookLoader(),
		NewJSONLoader(),
		NewHTMLLoader(),
		NewPDFLoader(),
		NewSpreadsheetLoader(),
	)
}

// Register appends a loader after the existing ones.
func (r *Registry) Register(l port.Loader) {
	r.loaders = append(r.loaders, l)
}

// Find returns the first loader claiming filename.
func (r *Registry) Find(filename string) (port.Loader, bool) {
	for _, l := range r.loaders {
		if l.Supports(filename) {
			return l, true
		}
	}
	return nil, false
}
