package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "meta", "metadata.db"))
	require.NoError(t, err)
	defer repo.Close()

	records, err := repo.FetchMetadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, repo.InsertMetadata(ctx, "notes.txt", "TXT", "2024-05-01T10:00:00Z"))
	require.NoError(t, repo.InsertMetadata(ctx, "lab.ipynb", "IPYNB", "2024-05-01T10:00:02Z"))

	records, err = repo.FetchMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "notes.txt", records[0].Filename)
	assert.Equal(t, "TXT", records[0].Source)
	assert.Equal(t, "2024-05-01T10:00:00Z", records[0].IngestionTimestamp)
	assert.Equal(t, "lab.ipynb", records[1].Filename)
}

func TestMetadataRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metadata.db")

	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.InsertMetadata(ctx, "a.md", "MD", "2024-01-01T00:00:00Z"))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	var version int
	require.NoError(t, repo.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	records, err := repo.FetchMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a.md", records[0].Filename)
}
