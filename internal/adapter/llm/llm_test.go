package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
)

func TestBuildPromptKeepsWholeContext(t *testing.T) {
	ctxText := strings.Repeat("long context ", 5000)
	p := BuildPrompt(ctxText, "what?")
	assert.Contains(t, p, ctxText)
	assert.Contains(t, p, "User's question: what?")
}

func TestOllamaGenerator(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "  Paris.\n", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL+"/", "llama3", "", time.Second)
	answer, err := g.GenerateResponse(context.Background(), "France's capital is Paris.", "Capital of France?")
	require.NoError(t, err)

	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, DefaultSystemPrompt, got.System)
	assert.Contains(t, got.Prompt, "France's capital is Paris.")
	assert.Equal(t, "llama3", g.ModelName())
}

func TestOllamaGeneratorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaGenerator(srv.URL, "missing", "", time.Second).GenerateResponse(context.Background(), "c", "q")
	assert.True(t, errors.Is(err, domain.ErrGeneration), "got %v", err)
	assert.Contains(t, err.Error(), "404")
}

func TestOpenAIGenerator(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "k")
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"42"}}]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator(srv.URL, "TEST_LLM_KEY", "gpt-test", "Be brief.", time.Second)
	require.NoError(t, err)

	answer, err := g.GenerateResponse(context.Background(), "ctx", "meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Be brief.", got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "meaning of life?")
}

func TestOpenAIGeneratorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator(srv.URL, "", "m", "", time.Second)
	require.NoError(t, err)
	_, err = g.GenerateResponse(context.Background(), "c", "q")
	assert.True(t, errors.Is(err, domain.ErrGeneration))
	assert.Contains(t, err.Error(), "invalid key")
}

func TestOpenAIGeneratorMissingKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewOpenAIGenerator("", "TEST_LLM_KEY", "", "", 0)
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
}

func TestGeminiGeneratorMissingKey(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "")
	_, err := NewGeminiGenerator(context.Background(), "TEST_GEMINI_KEY", "", "")
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
}

func TestEchoGenerator(t *testing.T) {
	out, err := NewEchoGenerator().GenerateResponse(context.Background(), "some context", "a question")
	require.NoError(t, err)
	assert.Contains(t, out, "a question")
	assert.Contains(t, out, "some context")
}

type flakyGenerator struct {
	calls int
	err   error
}

func (f *flakyGenerator) GenerateResponse(ctx context.Context, c, q string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func (f *flakyGenerator) ModelName() string { return "flaky" }

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &flakyGenerator{err: errors.New("boom")}
	var transitions []string
	g := WithCircuitBreaker(inner, func(from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	for i := 0; i < 3; i++ {
		_, err := g.GenerateResponse(context.Background(), "c", "q")
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())
	assert.Equal(t, []string{"closed->open"}, transitions)

	_, err := g.GenerateResponse(context.Background(), "c", "q")
	assert.True(t, errors.Is(err, domain.ErrGeneration), "got %v", err)
	assert.Equal(t, 3, inner.calls, "open breaker must not call the backend")
}

func TestBreakerPassesThrough(t *testing.T) {
	g := WithCircuitBreaker(&flakyGenerator{}, nil)
	out, err := g.GenerateResponse(context.Background(), "c", "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "flaky", g.ModelName())
}

type closingGenerator struct {
	EchoGenerator
	closed int
}

func (g *closingGenerator) Close() error {
	g.closed++
	return nil
}

func TestBreakerClosesWrappedBackend(t *testing.T) {
	inner := &closingGenerator{}
	var gen interface{} = WithCircuitBreaker(inner, nil)

	c, ok := gen.(io.Closer)
	require.True(t, ok, "breaker must expose Close")
	require.NoError(t, c.Close())
	assert.Equal(t, 1, inner.closed)

	assert.NoError(t, WithCircuitBreaker(NewEchoGenerator(), nil).Close())
}
