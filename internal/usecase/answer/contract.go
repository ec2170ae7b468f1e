package answer

import "context"

// Generator is the text generation capability consumed by the answerer.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
