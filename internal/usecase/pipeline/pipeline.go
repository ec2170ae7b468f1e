// Package pipeline orchestrates one document's journey from raw text to
// an answerable vector index: chunk, embed, index, then serve questions.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
	"github.com/askdoc/askdoc/internal/index"
	"github.com/askdoc/askdoc/internal/usecase/retrieve"
)

// State is the pipeline lifecycle phase. There is no transition back to
// StateEmpty: a new document always gets a new Pipeline, so no state
// can leak between documents.
type State string

const (
	StateEmpty    State = "empty"
	StateChunking State = "chunking"
	StateIndexing State = "indexing"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Pipeline holds the per-document chunk set and vector index. One
// instance serves one document; Ready pipelines answer any number of
// questions concurrently because the index is immutable.
type Pipeline struct {
	chunker  Chunker
	embedder domain.Embedder
	answerer Answerer
	logger   *zap.Logger

	mu      sync.RWMutex
	state   State
	failure error
	retr    *retrieve.Service
}

// New creates an empty pipeline bound to one embedder. The same
// embedder instance serves both indexing and later queries, which pins
// the embedding space for the pipeline's whole lifetime.
func New(chunker Chunker, embedder domain.Embedder, answerer Answerer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		chunker:  chunker,
		embedder: embedder,
		answerer: answerer,
		logger:   logger,
		state:    StateEmpty,
	}
}

// State returns the current lifecycle phase.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Err returns the failure that moved the pipeline to StateFailed, if any.
func (p *Pipeline) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.failure
}

// Ingest chunks, embeds and indexes the document text. Any stage error
// moves the pipeline to StateFailed: a partially indexed document is
// never exposed to Ask.
func (p *Pipeline) Ingest(ctx context.Context, text string) error {
	p.mu.Lock()
	if p.state != StateEmpty {
		state := p.state
		p.mu.Unlock()
		return fmt.Errorf("%w: ingest requires %q, pipeline is %q", domain.ErrPipelineState, StateEmpty, state)
	}
	p.state = StateChunking
	p.mu.Unlock()

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return p.fail(fmt.Errorf("document produced no chunks: %w", domain.ErrEmptyDocument))
	}
	p.setState(StateIndexing)

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return p.fail(fmt.Errorf("embed %d chunks: %w", len(chunks), err))
	}

	ix, err := index.Build(chunks, vectors)
	if err != nil {
		return p.fail(fmt.Errorf("build index: %w", err))
	}

	p.mu.Lock()
	p.retr = retrieve.New(p.embedder, ix)
	p.state = StateReady
	p.mu.Unlock()

	p.logger.Info("document indexed",
		zap.Int("chunks", ix.Len()),
		zap.Int("dimensions", ix.Dimensions()),
		zap.String("model", p.embedder.Model()),
	)
	return nil
}

// Ask retrieves the top-k chunks for the question and generates an
// answer. A failed question leaves the pipeline Ready: the index
// survives and the next Ask needs no re-chunking or re-indexing.
func (p *Pipeline) Ask(ctx context.Context, question string, k int) (domain.Answer, error) {
	p.mu.RLock()
	state, retr := p.state, p.retr
	p.mu.RUnlock()

	if state != StateReady {
		return domain.Answer{}, fmt.Errorf("%w: ask requires %q, pipeline is %q", domain.ErrPipelineState, StateReady, state)
	}

	retrieved, err := retr.Retrieve(ctx, question, k)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	ans, err := p.answerer.Answer(ctx, question, retrieved)
	if err != nil {
		return domain.Answer{}, err
	}
	return ans, nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) fail(err error) error {
	p.mu.Lock()
	p.state = StateFailed
	p.failure = err
	p.mu.Unlock()
	return err
}
