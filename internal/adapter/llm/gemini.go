package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ragpipe/internal/domain"
)

// GeminiGenerator answers through the Gemini API.
type GeminiGenerator struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiGenerator(ctx context.Context, apiKeyEnv, model, system string) (*GeminiGenerator, error) {
	if apiKeyEnv == "" {
		apiKeyEnv = "GEMINI_API_KEY"
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found. Set %s environment variable", domain.ErrConfiguration, apiKeyEnv)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", domain.ErrConfiguration, err)
	}

	m := client.GenerativeModel(model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(system))},
	}
	m.SetTemperature(0.2)

	return &GeminiGenerator{client: client, model: m, modelName: model}, nil
}

func (g *GeminiGenerator) GenerateResponse(ctx context.Context, context, query string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(context, query)))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrGeneration, err)
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return strings.TrimSpace(sb.String())
}

func (g *GeminiGenerator) ModelName() string {
	return g.modelName
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
