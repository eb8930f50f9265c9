package port

import "ragpipe/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Chunk, error)
}

type Cleaner interface {
	Clean(text string) string
}
