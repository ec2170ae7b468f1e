package domain

import "context"

// Embedder is the text vectorization contract shared between layers.
// Vectors are aligned positionally with the input texts, and every
// vector has exactly Dimensions() elements. Implementations wrap
// provider failures in ErrEmbeddingUnavailable.
type Embedder interface {
	// EmbedBatch vectorizes texts in one provider call. All-or-nothing:
	// any failure returns an error and no vectors.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Model returns the pinned model identifier.
	Model() string
	// Dimensions returns the declared output dimensionality.
	Dimensions() int
}

// Generator is the text generation capability. Implementations wrap
// provider failures in ErrGenerationFailed.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
