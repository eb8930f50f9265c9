package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"ragpipe/internal/domain"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keySpaceHash     = []byte("embedding_space")
	keyDimension     = []byte("vector_dim")
)

// EmbeddingSpace identifies the vectors a bolt file holds. Vectors from
// different spaces cannot be compared.
type EmbeddingSpace struct {
	Dimension int    `json:"dimension"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// Hash returns a short stable digest of the space.
func (e EmbeddingSpace) Hash() string {
	data, _ := json.Marshal(e)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// SchemaInfo stores schema version and embedding space.
type SchemaInfo struct {
	Version   int    `json:"version"`
	SpaceHash string `json:"space_hash"`
	Dimension int    `json:"dimension"`
}

// GetSchemaInfo returns a zero SchemaInfo for a fresh file.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)
		if v := b.Get(keySchemaVersion); v != nil {
			if err := json.Unmarshal(v, &info.Version); err != nil {
				return err
			}
		}
		if v := b.Get(keyDimension); v != nil {
			if err := json.Unmarshal(v, &info.Dimension); err != nil {
				return err
			}
		}
		if v := b.Get(keySpaceHash); v != nil {
			info.SpaceHash = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read schema info: %v", domain.ErrPersistence, err)
	}
	return &info, nil
}

func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)

		version, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, version); err != nil {
			return err
		}
		dim, err := json.Marshal(info.Dimension)
		if err != nil {
			return err
		}
		if err := b.Put(keyDimension, dim); err != nil {
			return err
		}
		return b.Put(keySpaceHash, []byte(info.SpaceHash))
	})
}

// CheckEmbeddingSpace stamps a fresh file with space and rejects a file
// written by a different schema version or embedding space.
func (s *BoltStore) CheckEmbeddingSpace(space EmbeddingSpace) error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}

	if info.Version == 0 {
		return s.SetSchemaInfo(&SchemaInfo{
			Version:   CurrentSchemaVersion,
			SpaceHash: space.Hash(),
			Dimension: space.Dimension,
		})
	}

	if info.Version > CurrentSchemaVersion {
		return fmt.Errorf("%w: %s was created by a newer version (v%d > v%d)",
			domain.ErrConfiguration, s.path, info.Version, CurrentSchemaVersion)
	}
	if info.Dimension != space.Dimension {
		return fmt.Errorf("%w: %s holds %d-dimensional vectors, configured dimension is %d",
			domain.ErrDimensionMismatch, s.path, info.Dimension, space.Dimension)
	}
	if info.SpaceHash != space.Hash() {
		return fmt.Errorf("%w: %s was built with a different embedding model (%s/%s now); reset the store to rebuild",
			domain.ErrConfiguration, s.path, space.Provider, space.Model)
	}
	return nil
}

// Reset clears all data and restamps the file for space.
func (s *BoltStore) Reset(space EmbeddingSpace) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("%w: clear %s: %v", domain.ErrPersistence, s.path, err)
	}
	return s.SetSchemaInfo(&SchemaInfo{
		Version:   CurrentSchemaVersion,
		SpaceHash: space.Hash(),
		Dimension: space.Dimension,
	})
}

