package qa

import (
	"context"

	"github.com/askdoc/askdoc/internal/domain"
)

// DocumentPipeline is the per-document ingest/ask lifecycle consumed by
// the facade.
type DocumentPipeline interface {
	Ingest(ctx context.Context, text string) error
	Ask(ctx context.Context, question string, k int) (domain.Answer, error)
}

// PipelineFactory creates a fresh pipeline for one document. Each call
// must return a new instance: pipelines are single-document by design.
type PipelineFactory func() DocumentPipeline
