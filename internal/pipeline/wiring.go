package pipeline

import (
	"context"
	"fmt"
	"time"

	"ragpipe/config"
	"ragpipe/internal/adapter/embedding"
	"ragpipe/internal/adapter/llm"
	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

var defaultKeyEnv = map[string]string{
	"openai":   "OPENAI_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
	"jina":     "JINA_API_KEY",
	"gemini":   "GEMINI_API_KEY",
}

func keyEnv(provider, configured string) string {
	if configured != "" {
		return configured
	}
	return defaultKeyEnv[provider]
}

// newEmbedder builds the configured embedding model. No network calls are
// made here.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	ec := cfg.Embedding
	opts := []embedding.Option{
		embedding.WithDimension(ec.Dimension),
		embedding.WithBatchSize(ec.BatchSize),
		embedding.WithRateLimit(ec.RequestsPerSecond),
	}

	switch ec.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(keyEnv("openai", ec.APIKeyEnv), ec.Model, append(opts, embedding.WithBaseURL(ec.BaseURL))...)
	case "deepseek":
		return embedding.NewDeepSeekEmbedder(keyEnv("deepseek", ec.APIKeyEnv), ec.Model, append(opts, embedding.WithBaseURL(ec.BaseURL))...)
	case "jina":
		return embedding.NewJinaEmbedder(keyEnv("jina", ec.APIKeyEnv), ec.Model, append(opts, embedding.WithBaseURL(ec.BaseURL))...)
	case "ollama":
		return embedding.NewOllamaEmbedder(ec.Model, ec.BaseURL, opts...)
	case "mock":
		dim := ec.Dimension
		if dim == 0 {
			dim = cfg.VectorStore.VectorDim
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, ec.Provider)
	}
}

// newGenerator builds the configured answer backend.
func newGenerator(ctx context.Context, cfg *config.Config, onBreaker func(from, to string)) (port.Generator, error) {
	gc := cfg.Generation
	timeout := time.Duration(gc.TimeoutSeconds) * time.Second

	var (
		gen port.Generator
		err error
	)
	switch gc.Provider {
	case "ollama":
		gen = llm.NewOllamaGenerator(gc.BaseURL, gc.Model, gc.SystemPrompt, timeout)
	case "openai":
		gen, err = llm.NewOpenAIGenerator(gc.BaseURL, keyEnv("openai", gc.APIKeyEnv), gc.Model, gc.SystemPrompt, timeout)
	case "gemini":
		gen, err = llm.NewGeminiGenerator(ctx, keyEnv("gemini", gc.APIKeyEnv), gc.Model, gc.SystemPrompt)
	case "echo":
		return llm.NewEchoGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrConfiguration, gc.Provider)
	}
	if err != nil {
		return nil, err
	}

	if gc.CircuitBreaker {
		return llm.WithCircuitBreaker(gen, onBreaker), nil
	}
	return gen, nil
}
