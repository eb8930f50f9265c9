package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"ragpipe/internal/domain"
)

// NotebookLoader keeps the markdown cells of a Jupyter notebook, joined by
// newlines. Code and output cells are dropped.
type NotebookLoader struct {
	extLoader
}

func NewNotebookLoader() *NotebookLoader {
	return &NotebookLoader{extLoader{exts: []string{".ipynb"}}}
}

type notebook struct {
	Cells []struct {
		CellType string          `json:"cell_type"`
		Source   json.RawMessage `json:"source"`
	} `json:"cells"`
}

func (l *NotebookLoader) Load(path string) (domain.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return domain.Document{}, fmt.Errorf("%w: parse notebook %s: %v", domain.ErrLoad, path, err)
	}

	var parts []string
	for _, cell := range nb.Cells {
		if cell.CellType != "markdown" {
			continue
		}
		src, err := cellSource(cell.Source)
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: cell source in %s: %v", domain.ErrLoad, path, err)
		}
		parts = append(parts, src)
	}
	return newDocument(path, strings.Join(parts, "\n")), nil
}

// cellSource accepts both the list-of-lines and single-string encodings.
func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, ""), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
