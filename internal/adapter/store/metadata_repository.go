package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"ragpipe/internal/domain"
)

// BoltMetadataRepository keeps one record per ingested file in the metadata
// bucket, keyed by sequence.
type BoltMetadataRepository struct {
	db *bbolt.DB
}

func NewBoltMetadataRepository(s *BoltStore) *BoltMetadataRepository {
	return &BoltMetadataRepository{db: s.db}
}

func (r *BoltMetadataRepository) InsertMetadata(ctx context.Context, filename, source, timestamp string) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(domain.MetadataRecord{
			ID:                 int64(seq),
			Filename:           filename,
			Source:             source,
			IngestionTimestamp: timestamp,
		})
		if err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
	if err != nil {
		return fmt.Errorf("%w: insert metadata for %s: %v", domain.ErrPersistence, filename, err)
	}
	return nil
}

// FetchMetadata returns every record in insertion order.
func (r *BoltMetadataRepository) FetchMetadata(ctx context.Context) ([]domain.MetadataRecord, error) {
	var records []domain.MetadataRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).ForEach(func(k, v []byte) error {
			var rec domain.MetadataRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrPersistence, err)
	}
	return records, nil
}

// Close is a no-op. The BoltStore owns the file handle.
func (r *BoltMetadataRepository) Close() error {
	return nil
}
