// Package answer turns retrieved chunks and a question into a prompt,
// invokes the generation capability, and reports which chunks backed
// the answer.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
)

// chunkSeparator joins chunk texts inside the context block.
const chunkSeparator = "\n\n---\n\n"

// Service composes prompts and delegates generation.
type Service struct {
	gen             Generator
	contextBudget   int // max cumulative chunk size in the prompt, runes
	maxAnswerTokens int
	logger          *zap.Logger
}

// New creates an answerer. contextBudget <= 0 disables truncation.
func New(gen Generator, contextBudget, maxAnswerTokens int, logger *zap.Logger) *Service {
	return &Service{
		gen:             gen,
		contextBudget:   contextBudget,
		maxAnswerTokens: maxAnswerTokens,
		logger:          logger,
	}
}

// Answer builds a bounded context block from the retrieved chunks in
// ranked order, asks the generator, and returns the answer together
// with the chunks that made it into the prompt. A generation failure
// yields no answer; retrying is the caller's decision.
func (s *Service) Answer(ctx context.Context, question string, retrieved []domain.ScoredChunk) (domain.Answer, error) {
	kept := fitBudget(retrieved, s.contextBudget)
	if dropped := len(retrieved) - len(kept); dropped > 0 {
		s.logger.Debug("context budget exhausted",
			zap.Int("kept", len(kept)),
			zap.Int("dropped", dropped),
		)
	}

	prompt := buildPrompt(kept, question)
	text, err := s.gen.Generate(ctx, prompt, s.maxAnswerTokens)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]domain.Chunk, len(kept))
	for i, r := range kept {
		sources[i] = r.Chunk
	}
	return domain.Answer{Text: strings.TrimSpace(text), SourceChunks: sources}, nil
}

// fitBudget keeps the longest ranked-order prefix whose cumulative text
// size stays within the budget. Dropping always happens at the
// lowest-similarity end, so truncation is deterministic.
func fitBudget(retrieved []domain.ScoredChunk, budget int) []domain.ScoredChunk {
	if budget <= 0 {
		return retrieved
	}
	total := 0
	for i, r := range retrieved {
		total += len([]rune(r.Chunk.Text))
		if total > budget {
			return retrieved[:i]
		}
	}
	return retrieved
}

func buildPrompt(kept []domain.ScoredChunk, question string) string {
	texts := make([]string, len(kept))
	for i, r := range kept {
		texts[i] = r.Chunk.Text
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about a single document.\n")
	b.WriteString("Answer using only the context below. If the context does not contain the answer, say you do not know.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(texts, chunkSeparator))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
