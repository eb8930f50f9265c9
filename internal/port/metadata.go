package port

import (
	"context"

	"ragpipe/internal/domain"
)

// MetadataRepository is the append-only record of ingested files.
type MetadataRepository interface {
	InsertMetadata(ctx context.Context, filename, source, ingestionTimestamp string) error

	FetchMetadata(ctx context.Context) ([]domain.MetadataRecord, error)

	Close() error
}
