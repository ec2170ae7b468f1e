package askdoc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubEmbedder struct {
	vocab      []string
	batchCalls int
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, len(e.vocab))
		for j, word := range e.vocab {
			vec[j] = float32(strings.Count(t, word))
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Model() string   { return "stub" }
func (e *stubEmbedder) Dimensions() int { return len(e.vocab) }

type stubGenerator struct {
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ int) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "stub answer", nil
}

func newTestClient(t *testing.T, emb *stubEmbedder, gen *stubGenerator, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithEmbedder(emb),
		WithGenerator(gen),
		WithChunking(40, 0),
		WithTopK(1),
	}, opts...)
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresProviderOrCustomStack(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected an error without an API key")
	}
	// An embedder alone is not enough; generation still needs a provider.
	if _, err := New(WithEmbedder(&stubEmbedder{vocab: []string{"x"}})); err == nil {
		t.Fatal("expected an error without a generator")
	}
	if _, err := New(WithOpenAI("test-key")); err != nil {
		t.Fatalf("unexpected error with an API key: %v", err)
	}
}

func TestNew_RejectsInvalidChunking(t *testing.T) {
	_, err := New(WithOpenAI("test-key"), WithChunking(100, 100))
	if err == nil {
		t.Fatal("expected an error for overlap >= size")
	}
}

func TestAsk_ReturnsAnswerWithSources(t *testing.T) {
	emb := &stubEmbedder{vocab: []string{"alpha", "beta", "gamma"}}
	gen := &stubGenerator{}
	c := newTestClient(t, emb, gen)

	document := "alpha is the first topic\n" +
		"beta is the hidden topic\n" +
		"gamma ends the document"

	ans, err := c.Ask(context.Background(), document, "tell me about beta")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Text != "stub answer" {
		t.Errorf("answer = %q", ans.Text)
	}
	if len(ans.SourceChunks) != 1 || !strings.Contains(ans.SourceChunks[0].Text, "beta") {
		t.Fatalf("source chunks = %+v", ans.SourceChunks)
	}
}

func TestAsk_Validation(t *testing.T) {
	c := newTestClient(t, &stubEmbedder{vocab: []string{"x"}}, &stubGenerator{})

	if _, err := c.Ask(context.Background(), "", "question"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a missing document, got %v", err)
	}
	if _, err := c.Ask(context.Background(), "document", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a blank question, got %v", err)
	}
}

func TestAsk_RetryAfterGenerationFailure(t *testing.T) {
	emb := &stubEmbedder{vocab: []string{"alpha"}}
	gen := &stubGenerator{err: ErrGenerationFailed}
	c := newTestClient(t, emb, gen)

	document := "alpha alpha alpha"
	if _, err := c.Ask(context.Background(), document, "about alpha?"); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	batchesAfterFirstAsk := emb.batchCalls

	gen.err = nil
	ans, err := c.Ask(context.Background(), document, "about alpha?")
	if err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if ans.Text != "stub answer" {
		t.Errorf("answer = %q", ans.Text)
	}
	// Only the query is re-embedded; the document index survives.
	if got := emb.batchCalls - batchesAfterFirstAsk; got != 1 {
		t.Errorf("expected 1 embedding batch for the retry, got %d", got)
	}
}

func TestAsk_IndexReusedAcrossQuestions(t *testing.T) {
	emb := &stubEmbedder{vocab: []string{"alpha", "beta"}}
	c := newTestClient(t, emb, &stubGenerator{})

	document := "alpha line\nbeta line"
	if _, err := c.Ask(context.Background(), document, "first?"); err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	after := emb.batchCalls

	if _, err := c.Ask(context.Background(), document, "second?"); err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if got := emb.batchCalls - after; got != 1 {
		t.Errorf("expected only the query embedded on the second ask, got %d batches", got)
	}
}
