// Package porttest holds behavioral suites shared by port implementations.
package porttest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// Factory returns an empty store accepting vectors of length dim.
type Factory func(t *testing.T, dim int) port.VectorStore

// RunVectorStore checks the vector store contract against stores built by newStore.
func RunVectorStore(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("EmptyStoreReturnsEmpty", func(t *testing.T) {
		vs := newStore(t, 3)
		res, err := vs.Query(ctx, []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, res)

		n, err := vs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		vs := newStore(t, 3)
		c := embedded("doc.txt", 4, "hello world", []float32{0.1, 0.2, 0.3})
		require.NoError(t, vs.Insert(ctx, []domain.Chunk{c}))

		res, err := vs.Query(ctx, c.Embedding, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "doc.txt", res[0].Filename)
		assert.Equal(t, 4, res[0].ChunkID)
		assert.Equal(t, "hello world", res[0].Content)
		assert.NotEmpty(t, res[0].ID)
		assert.InDelta(t, 0, res[0].Distance, 1e-5)
	})

	t.Run("ExactMatchFirstAndLimit", func(t *testing.T) {
		vs := newStore(t, 2)
		chunks := []domain.Chunk{
			embedded("a.txt", 0, "a0", []float32{0, 0}),
			embedded("a.txt", 1, "a1", []float32{1, 0}),
			embedded("b.txt", 0, "b0", []float32{0, 5}),
			embedded("b.txt", 1, "b1", []float32{3, 3}),
			embedded("c.txt", 0, "c0", []float32{-2, 0}),
		}
		require.NoError(t, vs.Insert(ctx, chunks))

		res, err := vs.Query(ctx, []float32{3, 3}, 2)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "b1", res[0].Content)
		assert.InDelta(t, 0, res[0].Distance, 1e-5)
		assert.LessOrEqual(t, res[0].Distance, res[1].Distance)

		all, err := vs.Query(ctx, []float32{0, 0}, 50)
		require.NoError(t, err)
		assert.Len(t, all, len(chunks))
		for i := 1; i < len(all); i++ {
			assert.LessOrEqual(t, all[i-1].Distance, all[i].Distance, "results must ascend by distance")
		}
		assert.Equal(t, "a0", all[0].Content)
	})

	t.Run("TiesKeepInsertionOrder", func(t *testing.T) {
		vs := newStore(t, 2)
		require.NoError(t, vs.Insert(ctx, []domain.Chunk{
			embedded("x.txt", 0, "first", []float32{1, 0}),
			embedded("x.txt", 1, "second", []float32{0, 1}),
			embedded("x.txt", 2, "third", []float32{-1, 0}),
		}))

		res, err := vs.Query(ctx, []float32{0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, []string{"first", "second", "third"}, contents(res))
	})

	t.Run("DuplicatesAreAppended", func(t *testing.T) {
		vs := newStore(t, 2)
		c := embedded("dup.txt", 0, "same", []float32{1, 1})
		require.NoError(t, vs.Insert(ctx, []domain.Chunk{c}))
		require.NoError(t, vs.Insert(ctx, []domain.Chunk{c}))

		n, err := vs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		res, err := vs.Query(ctx, c.Embedding, 10)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.NotEqual(t, res[0].ID, res[1].ID)
	})

	t.Run("MissingEmbeddingRejectsWholeBatch", func(t *testing.T) {
		vs := newStore(t, 2)
		good := embedded("m.txt", 0, "ok", []float32{1, 2})
		bad, _ := domain.NewChunk("m.txt", 1, "no vector")

		err := vs.Insert(ctx, []domain.Chunk{good, bad})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingEmbedding), "got %v", err)

		n, err := vs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n, "no partial insert")
	})

	t.Run("DimensionChecked", func(t *testing.T) {
		vs := newStore(t, 2)
		err := vs.Insert(ctx, []domain.Chunk{embedded("d.txt", 0, "x", []float32{1, 2, 3})})
		assert.True(t, errors.Is(err, domain.ErrDimensionMismatch), "got %v", err)

		_, err = vs.Query(ctx, []float32{1}, 1)
		assert.True(t, errors.Is(err, domain.ErrDimensionMismatch), "got %v", err)
	})

	t.Run("NonPositiveTopK", func(t *testing.T) {
		vs := newStore(t, 2)
		_, err := vs.Query(ctx, []float32{1, 2}, 0)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
	})

	t.Run("EmbeddingCarriedThrough", func(t *testing.T) {
		vs := newStore(t, 2)
		require.NoError(t, vs.Insert(ctx, []domain.Chunk{embedded("e.txt", 0, "v", []float32{0.25, -0.5})}))
		res, err := vs.Query(ctx, []float32{0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.InDeltaSlice(t, []float32{0.25, -0.5}, res[0].Embedding, 1e-6)
	})
}

func embedded(filename string, id int, content string, v []float32) domain.Chunk {
	c, _ := domain.NewChunk(filename, id, content)
	return c.WithEmbedding(v)
}

func contents(res []domain.VectorRecord) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Content
	}
	return out
}
