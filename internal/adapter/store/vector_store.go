package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"go.etcd.io/bbolt"

	"ragpipe/internal/adapter/memstore"
	"ragpipe/internal/domain"
)

// BoltVectorStore persists records in the vectors bucket and serves queries
// from an in-memory flat index loaded on open.
type BoltVectorStore struct {
	db    *bbolt.DB
	mu    sync.Mutex
	index *memstore.FlatIndex
}

type storedVector struct {
	Filename string    `json:"f"`
	ChunkID  int       `json:"c"`
	Content  string    `json:"t"`
	Vector   []float32 `json:"v"`
}

func NewBoltVectorStore(s *BoltStore, dimension int) (*BoltVectorStore, error) {
	vs := &BoltVectorStore{
		db:    s.db,
		index: memstore.NewFlatIndex(dimension),
	}
	if err := vs.load(); err != nil {
		return nil, fmt.Errorf("%w: load vectors: %w", domain.ErrVectorStore, err)
	}
	return vs, nil
}

// load reads every record in key order, which is insertion order.
func (s *BoltVectorStore) load() error {
	var records []domain.VectorRecord
	dim := s.index.Dimension()
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("record %d: %w", btoi(k), err)
			}
			if len(stored.Vector) != dim {
				return fmt.Errorf("%w: stored record %d has %d values, index expects %d",
					domain.ErrDimensionMismatch, btoi(k), len(stored.Vector), dim)
			}
			records = append(records, domain.VectorRecord{
				ID:        strconv.FormatUint(btoi(k), 10),
				Filename:  stored.Filename,
				ChunkID:   stored.ChunkID,
				Content:   stored.Content,
				Embedding: stored.Vector,
			})
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.index.Append(records...)
	return nil
}

// Insert writes the whole batch in one bolt transaction.
func (s *BoltVectorStore) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if err := memstore.ValidateBatch(chunks, s.index.Dimension()); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.VectorRecord, 0, len(chunks))
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, c := range chunks {
			if err := ctx.Err(); err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(storedVector{
				Filename: c.Filename,
				ChunkID:  c.ChunkID,
				Content:  c.Content,
				Vector:   c.Embedding,
			})
			if err != nil {
				return err
			}
			if err := b.Put(itob(seq), data); err != nil {
				return err
			}
			records = append(records, memstore.NewRecord(strconv.FormatUint(seq, 10), c))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: insert %d records: %v", domain.ErrVectorStore, len(chunks), err)
	}

	s.index.Append(records...)
	return nil
}

func (s *BoltVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]domain.VectorRecord, error) {
	return s.index.Query(ctx, vector, topK)
}

func (s *BoltVectorStore) Count(ctx context.Context) (int, error) {
	return s.index.Count(ctx)
}

func (s *BoltVectorStore) Dimension() int {
	return s.index.Dimension()
}
