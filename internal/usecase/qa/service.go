// Package qa is the caller-facing operation: one document, one
// question, one answer. Validation happens here, before any pipeline
// work starts.
package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
)

// Service validates requests and maintains a per-process cache of Ready
// pipelines keyed by document content and embedder model, so repeated
// questions against the same document skip re-chunking and re-embedding.
type Service struct {
	newPipeline PipelineFactory
	model       string
	topK        int
	logger      *zap.Logger

	mu    sync.Mutex
	cache map[string]DocumentPipeline
}

// New creates the facade. model must identify the embedding model the
// factory's pipelines use; it is part of the cache key so a model swap
// can never serve vectors from another embedding space.
func New(factory PipelineFactory, model string, topK int, logger *zap.Logger) *Service {
	return &Service{
		newPipeline: factory,
		model:       model,
		topK:        topK,
		logger:      logger,
		cache:       make(map[string]DocumentPipeline),
	}
}

// AskQuestion answers a question about the given document text. A blank
// question or missing document is rejected with ErrValidation before
// any chunking or embedding happens.
func (s *Service) AskQuestion(ctx context.Context, document, question string) (domain.Answer, error) {
	if strings.TrimSpace(document) == "" {
		return domain.Answer{}, fmt.Errorf("%w: document is required", domain.ErrValidation)
	}
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, fmt.Errorf("%w: question must not be blank", domain.ErrValidation)
	}

	p, err := s.pipelineFor(ctx, document)
	if err != nil {
		return domain.Answer{}, err
	}
	return p.Ask(ctx, question, s.topK)
}

// pipelineFor returns a Ready pipeline for the document, building one
// when the cache has no entry. Two concurrent first questions for the
// same document may both build; the pipelines are interchangeable and
// the last one wins, so correctness is unaffected.
func (s *Service) pipelineFor(ctx context.Context, document string) (DocumentPipeline, error) {
	key := s.cacheKey(document)

	s.mu.Lock()
	if p, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	p := s.newPipeline()
	if err := p.Ingest(ctx, document); err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = p
	s.mu.Unlock()

	s.logger.Debug("pipeline cached", zap.String("key", key))
	return p, nil
}

func (s *Service) cacheKey(document string) string {
	h := sha256.Sum256([]byte(document))
	return hex.EncodeToString(h[:]) + ":" + s.model
}
