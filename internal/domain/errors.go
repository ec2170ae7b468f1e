package domain

import "errors"

var (
	// ErrEmptyDocument signals a document with no chunkable content.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrGenerationFailed signals an answer generation failure.
	ErrGenerationFailed = errors.New("answer generation failed")
	// ErrValidation signals rejected caller input.
	ErrValidation = errors.New("validation failed")

	// ErrDimensionMismatch signals vectors of inconsistent dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrPipelineState signals an operation invoked in the wrong lifecycle phase.
	ErrPipelineState = errors.New("invalid pipeline state")
)
