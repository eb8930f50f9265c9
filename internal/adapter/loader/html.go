package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ragpipe/internal/domain"
)

// HTMLLoader extracts the visible text of an HTML page.
type HTMLLoader struct {
	extLoader
}

func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{extLoader{exts: []string{".html", ".htm"}}}
}

func (l *HTMLLoader) Load(path string) (domain.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: parse html %s: %v", domain.ErrLoad, path, err)
	}

	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	if text := strings.TrimSpace(root.Text()); text != "" {
		parts = append(parts, text)
	}
	return newDocument(path, strings.Join(parts, "\n")), nil
}
