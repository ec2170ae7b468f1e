package askdoc

import "context"

// Embedder turns text batches into vectors. Implementations must be
// deterministic for the same (model, text) pair within a process.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// Generator produces an answer from a fully composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// SourceChunk is a document segment the answer was grounded on.
type SourceChunk struct {
	ID     int
	Text   string
	Offset int
}

// Answer is a generated answer with the chunks used as context.
type Answer struct {
	Text         string
	SourceChunks []SourceChunk
}
