package retrieve

import (
	"context"

	"github.com/askdoc/askdoc/internal/domain"
)

// Embedder vectorizes query text. It must be the same embedder instance
// that produced the index vectors; mixing embedding spaces yields
// meaningless similarity scores.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher answers nearest-neighbor queries over an immutable index.
type Searcher interface {
	Search(query []float32, k int) ([]domain.ScoredChunk, error)
}
