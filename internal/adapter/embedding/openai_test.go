package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
)

func fakeServer(t *testing.T, dim int, requests *[]embeddingRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if requests != nil {
			*requests = append(*requests, req)
		}

		// reply out of order to check index mapping
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			v := make([]float32, dim)
			v[0] = float32(len(req.Input[i]))
			resp.Data = append(resp.Data, embeddingData{Embedding: v, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedderBatchesAndOrders(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	var requests []embeddingRequest
	srv := fakeServer(t, 4, &requests)

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "custom", srv.URL, WithDimension(4), WithBatchSize(2))
	require.NoError(t, err)
	assert.Equal(t, 4, e.Dimension())
	assert.Equal(t, "custom", e.ModelName())

	out, err := e.Embed(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, out, 5)
	for i, v := range out {
		assert.Equal(t, float32(i+1), v[0])
	}

	require.Len(t, requests, 3)
	assert.Equal(t, []string{"eeeee"}, requests[2].Input)
	assert.Equal(t, "custom", requests[0].Model)
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", "http://127.0.0.1:1")
	require.NoError(t, err)

	out, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenAIEmbedderMissingKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")
	_, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-small")
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
}

func TestOpenAIEmbedderDefaultDimensions(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	e, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-large")
	require.NoError(t, err)
	assert.Equal(t, 3072, e.Dimension())

	o, err := NewOllamaEmbedder("all-minilm", "")
	require.NoError(t, err)
	assert.Equal(t, 384, o.Dimension())
}

func TestOpenAIEmbedderWrongDimension(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	srv := fakeServer(t, 3, nil)

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, WithDimension(8))
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"x"})
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch), "got %v", err)
}

func TestOpenAIEmbedderHTTPError(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL)
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIEmbedderAPIErrorBody(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request"}}`))
	}))
	defer srv.Close()

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL)
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"x"})
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
	assert.Contains(t, err.Error(), "bad model")
}

func TestOpenAIEmbedderHonoursContext(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	srv := fakeServer(t, 2, nil)
	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, WithDimension(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestOpenAIEmbedderRateLimit(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")
	var requests []embeddingRequest
	srv := fakeServer(t, 2, &requests)

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL,
		WithDimension(2), WithBatchSize(1), WithRateLimit(1000))
	require.NoError(t, err)

	out, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Len(t, requests, 3)
}
