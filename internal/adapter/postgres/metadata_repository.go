package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ragpipe/internal/domain"
)

// MetadataRepository is a port.MetadataRepository over the metadata table.
// It shares the connection with VectorStore and does not close it.
type MetadataRepository struct {
	db *sql.DB
}

func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func (r *MetadataRepository) InsertMetadata(ctx context.Context, filename, source, timestamp string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO metadata (filename, source, ingestion_timestamp) VALUES ($1, $2, $3)`,
		filename, source, timestamp)
	if err != nil {
		return fmt.Errorf("%w: insert metadata for %s: %v", domain.ErrPersistence, filename, err)
	}
	return nil
}

func (r *MetadataRepository) FetchMetadata(ctx context.Context) ([]domain.MetadataRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, source, ingestion_timestamp FROM metadata ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var records []domain.MetadataRecord
	for rows.Next() {
		var rec domain.MetadataRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Source, &rec.IngestionTimestamp); err != nil {
			return nil, fmt.Errorf("%w: scan metadata: %v", domain.ErrPersistence, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrPersistence, err)
	}
	return records, nil
}

func (r *MetadataRepository) Close() error {
	return nil
}
