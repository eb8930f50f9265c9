package saver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
)

func chunk(t *testing.T, filename string, id int, content string) domain.Chunk {
	t.Helper()
	c, err := domain.NewChunk(filename, id, content)
	require.NoError(t, err)
	return c
}

func TestFileSaverWritesChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed", "nested")
	s := NewFileSaver(dir)

	err := s.SaveChunks([]domain.Chunk{
		chunk(t, "doc.txt", 0, "first window"),
		chunk(t, "doc.txt", 1, "second window"),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "doc.txt_chunk_0.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first window", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "doc.txt_chunk_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second window", string(data))
}

func TestFileSaverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSaver(dir)

	require.NoError(t, s.SaveChunks([]domain.Chunk{chunk(t, "a.md", 0, "old content that is longer")}))
	require.NoError(t, s.SaveChunks([]domain.Chunk{chunk(t, "a.md", 0, "new")}))

	data, err := os.ReadFile(s.Path(chunk(t, "a.md", 0, "")))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileSaverUnwritableDirectory(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewFileSaver(filepath.Join(blocker, "sub")).SaveChunks([]domain.Chunk{chunk(t, "a", 0, "x")})
	assert.True(t, errors.Is(err, domain.ErrPersistence), "got %v", err)
}
