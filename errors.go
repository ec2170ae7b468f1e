package askdoc

import "github.com/askdoc/askdoc/internal/domain"

// Sentinel errors returned by Client.Ask. Match with errors.Is.
var (
	// ErrValidation indicates a blank question or missing document.
	ErrValidation = domain.ErrValidation
	// ErrEmptyDocument indicates the document produced no chunks.
	ErrEmptyDocument = domain.ErrEmptyDocument
	// ErrEmbeddingUnavailable indicates the embedding provider failed.
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	// ErrGenerationFailed indicates answer generation failed; the same
	// question can be asked again without re-indexing.
	ErrGenerationFailed = domain.ErrGenerationFailed
)
