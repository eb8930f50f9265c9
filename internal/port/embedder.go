package port

import (
	"context"

	"ragpipe/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore persists embedded chunks and answers nearest-neighbor queries.
// Stores are append-only: inserting the same chunk twice yields two records.
type VectorStore interface {
	// Insert appends chunks. Every chunk must carry an embedding of
	// Dimension() length; nothing is written if any chunk fails that check.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// Query returns at most topK records ordered by ascending distance.
	// An empty store yields an empty result and no error.
	Query(ctx context.Context, embedding []float32, topK int) ([]domain.VectorRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Dimension returns the vector length the store accepts.
	Dimension() int
}
