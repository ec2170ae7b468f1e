// Package retrieve wraps a vector index with the top-k similarity
// search contract. Binding one embedder per index at construction keeps
// the embedding space consistent between build and query time.
package retrieve

import (
	"context"
	"fmt"

	"github.com/askdoc/askdoc/internal/domain"
)

// Service retrieves the chunks most similar to a natural-language query.
type Service struct {
	embed Embedder
	index Searcher
}

// New binds an embedder and a built index into a retriever.
func New(embed Embedder, index Searcher) *Service {
	return &Service{embed: embed, index: index}
}

// Retrieve embeds the query and returns up to k chunks ranked by
// descending similarity.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	vectors, err := s.embed.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: %d vectors returned for one query", domain.ErrEmbeddingUnavailable, len(vectors))
	}

	results, err := s.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
