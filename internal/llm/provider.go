package llm

import (
	"context"
)

// Provider defines the interface for LLM providers.
// Providers return the raw JSON text; callers decode it against OutputSchema.
type Provider interface {
	// Generate runs one completion with structured output
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	SystemPrompt  string
	Input         string
	Temperature   float64
	ReasoningMode string
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput    string `json:"-"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}
