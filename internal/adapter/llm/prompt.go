// Package llm holds the answer generators behind port.Generator.
package llm

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are an AI that answers questions helpfully and accurately using the provided context."

// BuildPrompt lays out context and question for single-prompt backends.
// The context is passed through whole.
func BuildPrompt(context, query string) string {
	var sb strings.Builder
	sb.WriteString("Context provided is below:\n")
	sb.WriteString("----------------\n")
	sb.WriteString(context)
	sb.WriteString("\n----------------\n\n")
	fmt.Fprintf(&sb, "User's question: %s\n\nAnswer:", query)
	return sb.String()
}

func systemPrompt(p string) string {
	if strings.TrimSpace(p) == "" {
		return DefaultSystemPrompt
	}
	return p
}
