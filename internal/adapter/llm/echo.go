package llm

import (
	"context"
	"fmt"
)

// EchoGenerator returns a canned answer built from its inputs. It needs no
// backend and is used for offline runs.
type EchoGenerator struct{}

func NewEchoGenerator() *EchoGenerator {
	return &EchoGenerator{}
}

func (g *EchoGenerator) GenerateResponse(ctx context.Context, context, query string) (string, error) {
	return fmt.Sprintf("Simulated response for %q with context: %q", preview(query, 50), preview(context, 50)), nil
}

func (g *EchoGenerator) ModelName() string {
	return "echo"
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
