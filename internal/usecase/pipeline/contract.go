package pipeline

import (
	"context"

	"github.com/askdoc/askdoc/internal/domain"
)

// Chunker splits raw document text into retrieval units.
type Chunker interface {
	Split(text string) []domain.Chunk
}

// Answerer turns a question and retrieved chunks into an answer.
type Answerer interface {
	Answer(ctx context.Context, question string, retrieved []domain.ScoredChunk) (domain.Answer, error)
}
