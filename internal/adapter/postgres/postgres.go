// Package postgres keeps embeddings and ingestion metadata in PostgreSQL
// using the pgvector extension.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"ragpipe/internal/domain"
)

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: database url is empty", domain.ErrConfiguration)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", domain.ErrPersistence, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect to database: %v", domain.ErrPersistence, err)
	}
	return db, nil
}

// EnsureSchema creates the extension and tables when missing and checks
// that an existing embedding column has dimension dim.
func EnsureSchema(ctx context.Context, db *sql.DB, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrConfiguration, dim)
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS metadata (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT NOT NULL,
			source TEXT NOT NULL,
			ingestion_timestamp TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT NOT NULL,
			chunk_id INTEGER NOT NULL CHECK (chunk_id >= 0),
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, dim),
		`CREATE INDEX IF NOT EXISTS idx_embeddings_filename ON embeddings (filename, chunk_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", domain.ErrPersistence, err)
		}
	}

	have, err := columnDimension(ctx, db)
	if err != nil {
		return err
	}
	if have != dim {
		return fmt.Errorf("%w: embeddings.embedding is vector(%d), configured dimension is %d",
			domain.ErrDimensionMismatch, have, dim)
	}
	return nil
}

// columnDimension reads the declared length of embeddings.embedding. For the
// vector type atttypmod is the dimension itself.
func columnDimension(ctx context.Context, db *sql.DB) (int, error) {
	var typmod int
	err := db.QueryRowContext(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'embeddings'::regclass AND attname = 'embedding'`).Scan(&typmod)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: embeddings table has no embedding column", domain.ErrConfiguration)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read embedding column: %v", domain.ErrPersistence, err)
	}
	return typmod, nil
}
