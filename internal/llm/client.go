package llm

import (
	"context"
)

// GenerateOptions tunes a single completion call. The zero value leaves
// everything at the provider default.
type GenerateOptions struct {
	// Temperature overrides the provider default when non-nil. Zero is a
	// meaningful value (greedy decoding), hence the pointer.
	Temperature *float32
	// MaxTokens caps the completion length when positive.
	MaxTokens int
	// JSONOnly asks the provider for a JSON-object response where the API
	// supports it. The prompt still has to spell out the schema.
	JSONOnly bool
}

type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Temp is a convenience for building GenerateOptions literals.
func Temp(v float32) *float32 { return &v }
