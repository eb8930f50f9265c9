package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ragpipe/internal/domain"
)

// JSONLoader re-indents JSON documents with two spaces.
type JSONLoader struct {
	extLoader
}

func NewJSONLoader() *JSONLoader {
	return &JSONLoader{extLoader{exts: []string{".json"}}}
}

func (l *JSONLoader) Load(path string) (domain.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(data), "", "  "); err != nil {
		return domain.Document{}, fmt.Errorf("%w: parse json %s: %v", domain.ErrLoad, path, err)
	}
	return newDocument(path, out.String()), nil
}
