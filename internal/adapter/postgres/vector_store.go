package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pgvector/pgvector-go"

	"ragpipe/internal/adapter/memstore"
	"ragpipe/internal/domain"
)

// VectorStore is a port.VectorStore over the embeddings table.
type VectorStore struct {
	db  *sql.DB
	dim int
}

// NewVectorStore expects EnsureSchema to have run for dim.
func NewVectorStore(db *sql.DB, dim int) *VectorStore {
	return &VectorStore{db: db, dim: dim}
}

func (s *VectorStore) Dimension() int {
	return s.dim
}

// Insert writes the batch in one transaction.
func (s *VectorStore) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if err := memstore.ValidateBatch(chunks, s.dim); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrVectorStore, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (filename, chunk_id, content, embedding) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", domain.ErrVectorStore, err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.Filename, c.ChunkID, c.Content, pgvector.NewVector(c.Embedding)); err != nil {
			return fmt.Errorf("%w: insert %s: %v", domain.ErrVectorStore, c.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrVectorStore, err)
	}
	return nil
}

// Query orders by L2 distance, breaking ties by id so insertion order wins.
func (s *VectorStore) Query(ctx context.Context, vector []float32, topK int) ([]domain.VectorRecord, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d values, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dim)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, chunk_id, content, embedding, embedding <-> $1 AS distance
		FROM embeddings
		ORDER BY distance, id
		LIMIT $2`, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrVectorStore, err)
	}
	defer rows.Close()

	var out []domain.VectorRecord
	for rows.Next() {
		var (
			id  int64
			rec domain.VectorRecord
			emb pgvector.Vector
		)
		if err := rows.Scan(&id, &rec.Filename, &rec.ChunkID, &rec.Content, &emb, &rec.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrVectorStore, err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Embedding = emb.Slice()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrVectorStore, err)
	}
	return out, nil
}

func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", domain.ErrVectorStore, err)
	}
	return n, nil
}
