package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
	"ragpipe/internal/port/porttest"
)

// testDB connects to RAG_TEST_DATABASE_URL and drops the tables so each
// caller starts from an empty schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("RAG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RAG_TEST_DATABASE_URL not set")
	}

	db, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`DROP TABLE IF EXISTS embeddings, metadata`)
	require.NoError(t, err)
	return db
}

func TestVectorStoreConformance(t *testing.T) {
	if os.Getenv("RAG_TEST_DATABASE_URL") == "" {
		t.Skip("RAG_TEST_DATABASE_URL not set")
	}
	porttest.RunVectorStore(t, func(t *testing.T, dim int) port.VectorStore {
		db := testDB(t)
		require.NoError(t, EnsureSchema(context.Background(), db, dim))
		return NewVectorStore(db, dim)
	})
}

func TestEnsureSchemaDimensionMismatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, db, 4))
	require.NoError(t, EnsureSchema(ctx, db, 4))

	err := EnsureSchema(ctx, db, 8)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch), "got %v", err)
}

func TestMetadataRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db, 4))

	repo := NewMetadataRepository(db)
	require.NoError(t, repo.InsertMetadata(ctx, "a.txt", "TXT", "2024-01-01T00:00:00Z"))
	require.NoError(t, repo.InsertMetadata(ctx, "b.json", "JSON", "2024-01-01T00:00:01Z"))

	records, err := repo.FetchMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.txt", records[0].Filename)
	assert.Equal(t, "JSON", records[1].Source)
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
}

func TestEnsureSchemaRejectsBadDimension(t *testing.T) {
	err := EnsureSchema(context.Background(), nil, 0)
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
}
