// Package askdoc answers questions about a single document using
// retrieval-augmented generation: the document is split into overlapping
// chunks, embedded into an in-memory vector index, and each question is
// answered from the most similar chunks.
package askdoc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/chunker"
	"github.com/askdoc/askdoc/internal/domain"
	openaiTransport "github.com/askdoc/askdoc/internal/transport/openai"
	answeruc "github.com/askdoc/askdoc/internal/usecase/answer"
	"github.com/askdoc/askdoc/internal/usecase/pipeline"
	qauc "github.com/askdoc/askdoc/internal/usecase/qa"
)

// Client is the askdoc SDK entry point. One Client serves any number of
// documents; per-document indexes are cached by document content, so
// repeated questions skip re-chunking and re-embedding.
type Client struct {
	qa *qauc.Service
}

// New creates a Client. Either WithOpenAI or both WithEmbedder and
// WithGenerator must be provided.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel:  "text-embedding-3-small",
		generationModel: "gpt-4o-mini",
		maxAnswerTokens: 512,
		chunkSize:       500,
		overlap:         100,
		topK:            4,
		logger:          zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.apiKey == "" && (cfg.embedder == nil || cfg.generator == nil) {
		return nil, errors.New("askdoc: API key required (use WithOpenAI, or provide WithEmbedder and WithGenerator)")
	}

	chk, err := chunker.New(chunker.Config{
		ChunkSize: cfg.chunkSize,
		Overlap:   cfg.overlap,
		Separator: cfg.separator,
	})
	if err != nil {
		return nil, fmt.Errorf("askdoc: %w", err)
	}

	var embedder domain.Embedder = cfg.embedder
	if embedder == nil {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.embeddingDims,
			Logger:     cfg.logger,
		})
	}

	var generator answeruc.Generator = cfg.generator
	if generator == nil {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Model:   cfg.generationModel,
			Timeout: cfg.generateTimeout,
			Logger:  cfg.logger,
		})
	}

	answerSvc := answeruc.New(generator, cfg.contextBudget, cfg.maxAnswerTokens, cfg.logger)
	factory := func() qauc.DocumentPipeline {
		return pipeline.New(chk, embedder, answerSvc, cfg.logger)
	}

	return &Client{
		qa: qauc.New(factory, embedder.Model(), cfg.topK, cfg.logger),
	}, nil
}

// Ask answers a question about the given document text.
func (c *Client) Ask(ctx context.Context, document, question string) (Answer, error) {
	ans, err := c.qa.AskQuestion(ctx, document, question)
	if err != nil {
		return Answer{}, err
	}
	return answerFromDomain(ans), nil
}

func answerFromDomain(ans domain.Answer) Answer {
	chunks := make([]SourceChunk, len(ans.SourceChunks))
	for i, ch := range ans.SourceChunks {
		chunks[i] = SourceChunk{ID: ch.ID, Text: ch.Text, Offset: ch.Offset}
	}
	return Answer{Text: ans.Text, SourceChunks: chunks}
}
