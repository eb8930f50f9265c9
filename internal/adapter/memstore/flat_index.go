package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ragpipe/internal/domain"
)

// FlatIndex is an exhaustive in-memory vector index. Records are kept in
// insertion order and scanned on every query.
type FlatIndex struct {
	mu      sync.RWMutex
	dim     int
	records []domain.VectorRecord
}

func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

func (f *FlatIndex) Dimension() int {
	return f.dim
}

// Insert appends every chunk with a fresh id. Nothing is written unless the
// whole batch is valid.
func (f *FlatIndex) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if err := ValidateBatch(chunks, f.dim); err != nil {
		return err
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = NewRecord(uuid.NewString(), c)
	}
	f.Append(records...)
	return nil
}

// Append adds records that already carry ids. Callers validate first.
func (f *FlatIndex) Append(records ...domain.VectorRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
}

// Query returns up to topK records nearest to vector by Euclidean distance.
// Equal distances keep insertion order.
func (f *FlatIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.VectorRecord, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(vector) != f.dim {
		return nil, fmt.Errorf("%w: query has %d values, index expects %d", domain.ErrDimensionMismatch, len(vector), f.dim)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	type scored struct {
		idx  int
		dist float64
	}
	scores := make([]scored, len(f.records))
	for i, r := range f.records {
		scores[i] = scored{idx: i, dist: Euclidean(vector, r.Embedding)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].dist < scores[b].dist
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.VectorRecord, 0, topK)
	for _, s := range scores[:topK] {
		r := f.records[s.idx]
		r.Embedding = append([]float32(nil), r.Embedding...)
		r.Distance = s.dist
		out = append(out, r)
	}
	return out, nil
}

func (f *FlatIndex) Count(ctx context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records), nil
}

// ValidateBatch checks that every chunk carries an embedding of length dim.
func ValidateBatch(chunks []domain.Chunk, dim int) error {
	for _, c := range chunks {
		if !c.HasEmbedding() {
			return fmt.Errorf("%w: chunk %s", domain.ErrMissingEmbedding, c.Key())
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: chunk %s has %d values, index expects %d", domain.ErrDimensionMismatch, c.Key(), len(c.Embedding), dim)
		}
	}
	return nil
}

// NewRecord projects an embedded chunk into a record with the given id.
func NewRecord(id string, c domain.Chunk) domain.VectorRecord {
	return domain.VectorRecord{
		ID:        id,
		Filename:  c.Filename,
		ChunkID:   c.ChunkID,
		Content:   c.Content,
		Embedding: append([]float32(nil), c.Embedding...),
	}
}

func Euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
