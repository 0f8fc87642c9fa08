// Package llm talks to generative-language APIs. Providers share one
// text-in, text-out interface and are composed with retry and metrics
// decorators.
package llm

import (
	"context"
)

// Provider generates text for a prompt.
type Provider interface {
	// Generate sends the request and returns the generated text. When
	// req.Schema is set the text is JSON that validates against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System is an optional system instruction.
	System string

	// Prompt is the single user turn.
	Prompt string

	// Schema, when set, asks for JSON output conforming to it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
	TopK        int
	TopP        float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema in caches and provider requests.
	Name string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the generated output.
type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
