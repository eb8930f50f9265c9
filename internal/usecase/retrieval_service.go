package usecase

import (
	"context"
	"fmt"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// RetrievalService finds the stored chunks nearest to a query.
type RetrievalService struct {
	embeddings *EmbeddingService
	store      port.VectorStore
}

func NewRetrievalService(embeddings *EmbeddingService, store port.VectorStore) *RetrievalService {
	return &RetrievalService{embeddings: embeddings, store: store}
}

// Retrieve returns up to topK chunks, nearest first.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.Chunk, error) {
	records, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = r.Chunk()
	}
	return chunks, nil
}

// Search is Retrieve keeping record ids and distances.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int) ([]domain.VectorRecord, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	vector, err := s.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.Nearest(ctx, vector, topK)
}

// EmbedQuery embeds query with the model used for the stored chunks.
func (s *RetrievalService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embeddings.EmbedQuery(ctx, query)
}

// Nearest returns up to topK stored records closest to vector.
func (s *RetrievalService) Nearest(ctx context.Context, vector []float32, topK int) ([]domain.VectorRecord, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	return s.store.Query(ctx, vector, topK)
}
