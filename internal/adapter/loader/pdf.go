package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"ragpipe/internal/domain"
)

// PDFLoader extracts the plain text layer of each page. Pages without text
// are skipped.
type PDFLoader struct {
	extLoader
}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{extLoader{exts: []string{".pdf"}}}
}

func (l *PDFLoader) Load(path string) (doc domain.Document, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf %s: %v", domain.ErrLoad, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: open pdf %s: %v", domain.ErrLoad, path, err)
	}
	defer f.Close()

	var pages []string
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: page %d of %s: %v", domain.ErrLoad, i, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return newDocument(path, strings.Join(pages, "\n")), nil
}
