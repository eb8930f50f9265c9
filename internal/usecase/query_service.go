package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// QueryService assembles retrieved chunks into context and asks the
// generator for an answer.
type QueryService struct {
	generator port.Generator
}

func NewQueryService(generator port.Generator) *QueryService {
	return &QueryService{generator: generator}
}

// BuildContext joins chunk contents with newlines in the given order.
func BuildContext(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n")
}

// Answer generates a response to query grounded on chunks.
func (s *QueryService) Answer(ctx context.Context, query string, chunks []domain.Chunk) (string, error) {
	answer, err := s.generator.GenerateResponse(ctx, BuildContext(chunks), query)
	if err != nil {
		if errors.Is(err, domain.ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: %s returned an empty answer", domain.ErrGeneration, s.generator.ModelName())
	}
	return answer, nil
}
