package loader

import "ragpipe/internal/domain"

// TextLoader reads plain text and markdown verbatim.
type TextLoader struct {
	extLoader
}

func NewTextLoader() *TextLoader {
	return &TextLoader{extLoader{exts: []string{".txt", ".md", ".markdown"}}}
}

func (l *TextLoader) Load(path string) (domain.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	return newDocument(path, string(data)), nil
}
