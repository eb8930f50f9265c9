package usecase

import (
	"context"
	"errors"
	"strings"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

type fakeLister struct {
	files []port.FileInfo
	err   error
}

func (f *fakeLister) List(dir string) ([]port.FileInfo, error) {
	return f.files, f.err
}

type fakeLoader struct {
	ext      string
	contents map[string]string
	fail     map[string]bool
}

func (l *fakeLoader) Supports(filename string) bool {
	return strings.HasSuffix(filename, l.ext)
}

func (l *fakeLoader) Load(path string) (domain.Document, error) {
	if l.fail[path] {
		return domain.Document{}, errors.New("unreadable")
	}
	return domain.NewDocument(path, l.contents[path]), nil
}

type fakeFinder []port.Loader

func (f fakeFinder) Find(filename string) (port.Loader, bool) {
	for _, l := range f {
		if l.Supports(filename) {
			return l, true
		}
	}
	return nil, false
}

type upperCleaner struct{}

func (upperCleaner) Clean(s string) string { return strings.ToUpper(s) }

// wordChunker emits one chunk per space-separated word.
type wordChunker struct{}

func (wordChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for i, w := range strings.Fields(doc.Content) {
		c, err := domain.NewChunk(doc.Filename, i, w)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type metaCall struct {
	filename, source, timestamp string
}

type fakeMetadata struct {
	calls []metaCall
	err   error
}

func (m *fakeMetadata) InsertMetadata(ctx context.Context, filename, source, ts string) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, metaCall{filename, source, ts})
	return nil
}

func (m *fakeMetadata) FetchMetadata(ctx context.Context) ([]domain.MetadataRecord, error) {
	out := make([]domain.MetadataRecord, len(m.calls))
	for i, c := range m.calls {
		out[i] = domain.MetadataRecord{ID: int64(i + 1), Filename: c.filename, Source: c.source, IngestionTimestamp: c.timestamp}
	}
	return out, nil
}

func (m *fakeMetadata) Close() error { return nil }

type fakeSaver struct {
	saved []domain.Chunk
	fail  string
}

func (s *fakeSaver) SaveChunks(chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.Filename == s.fail {
			return domain.ErrPersistence
		}
	}
	s.saved = append(s.saved, chunks...)
	return nil
}

// lengthEmbedder maps text to [len, first byte].
type lengthEmbedder struct {
	calls [][]string
	err   error
	short bool
}

func (e *lengthEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		var first float32
		if len(t) > 0 {
			first = float32(t[0])
		}
		out[i] = []float32{float32(len(t)), first}
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *lengthEmbedder) Dimension() int   { return 2 }
func (e *lengthEmbedder) ModelName() string { return "length" }

type fakeGenerator struct {
	gotContext string
	gotQuery   string
	answer     string
	err        error
}

func (g *fakeGenerator) GenerateResponse(ctx context.Context, context, query string) (string, error) {
	g.gotContext, g.gotQuery = context, query
	return g.answer, g.err
}

func (g *fakeGenerator) ModelName() string { return "fake" }
