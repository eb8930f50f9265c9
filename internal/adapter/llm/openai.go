package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ragpipe/internal/domain"
)

// OpenAIGenerator calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	system  string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIGenerator reads the key from apiKeyEnv. An empty apiKeyEnv is
// allowed for local servers that need no key.
func NewOpenAIGenerator(baseURL, apiKeyEnv, model, system string, timeout time.Duration) (*OpenAIGenerator, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	var apiKey string
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%w: API key not found. Set %s environment variable", domain.ErrConfiguration, apiKeyEnv)
		}
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		system:  systemPrompt(system),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (g *OpenAIGenerator) GenerateResponse(ctx context.Context, context, query string) (string, error) {
	jsonData, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: g.system},
			{Role: "user", Content: BuildPrompt(context, query)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrGeneration, err)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: parse response (status %d): %v", domain.ErrGeneration, resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", domain.ErrGeneration, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d", domain.ErrGeneration, resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from model", domain.ErrGeneration)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
