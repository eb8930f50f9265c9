package usecase

import (
	"context"
	"fmt"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// EmbeddingService attaches vectors to chunks and queries.
type EmbeddingService struct {
	embedder  port.Embedder
	batchSize int

	// OnBatch, when set, is called with the number of chunks embedded so far.
	OnBatch func(done, total int)
}

func NewEmbeddingService(embedder port.Embedder, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &EmbeddingService{embedder: embedder, batchSize: batchSize}
}

// CheckDimension fails when the model and the store disagree on length.
func (s *EmbeddingService) CheckDimension(storeDim int) error {
	if got := s.embedder.Dimension(); got != storeDim {
		return fmt.Errorf("%w: embedding model %s produces %d values, vector store expects %d",
			domain.ErrDimensionMismatch, s.embedder.ModelName(), got, storeDim)
	}
	return nil
}

// EmbedChunks returns copies of chunks carrying embeddings, in input order.
// The input slice is not modified.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := s.embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		for i, c := range batch {
			out = append(out, c.WithEmbedding(vectors[i]))
		}

		if s.OnBatch != nil {
			s.OnBatch(end, len(chunks))
		}
	}
	return out, nil
}

// EmbedQuery embeds one text with the same model as the chunks.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vectors), len(texts))
	}
	dim := s.embedder.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, model declares %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return vectors, nil
}
