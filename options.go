package askdoc

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	apiKey  string
	baseURL string

	embeddingModel  string
	embeddingDims   int
	generationModel string
	maxAnswerTokens int
	generateTimeout time.Duration

	chunkSize int
	overlap   int
	separator string

	topK          int
	contextBudget int

	embedder  Embedder
	generator Generator
	logger    *zap.Logger
}

// WithOpenAI sets the API key for the OpenAI-compatible provider used
// for both embeddings and generation.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
	}
}

// WithBaseURL points the provider client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithEmbeddingModel selects the embedding model. dimensions 0 keeps
// the model's native dimensionality.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.embeddingModel = model
		c.embeddingDims = dimensions
	}
}

// WithGenerationModel selects the chat model used to compose answers.
func WithGenerationModel(model string) Option {
	return func(c *clientConfig) {
		c.generationModel = model
	}
}

// WithChunking sets chunk size and overlap in runes. Overlap must be
// smaller than size.
func WithChunking(size, overlap int) Option {
	return func(c *clientConfig) {
		c.chunkSize = size
		c.overlap = overlap
	}
}

// WithSeparator sets the boundary chunks prefer to end on.
func WithSeparator(sep string) Option {
	return func(c *clientConfig) {
		c.separator = sep
	}
}

// WithTopK sets how many chunks are retrieved per question.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.topK = k
	}
}

// WithContextBudget caps the total runes of chunk text in the prompt.
// 0 disables the cap.
func WithContextBudget(runes int) Option {
	return func(c *clientConfig) {
		c.contextBudget = runes
	}
}

// WithMaxAnswerTokens caps the generated answer length.
func WithMaxAnswerTokens(tokens int) Option {
	return func(c *clientConfig) {
		c.maxAnswerTokens = tokens
	}
}

// WithGenerateTimeout bounds a single generation call.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.generateTimeout = d
	}
}

// WithEmbedder replaces the OpenAI embedder with a custom implementation.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithGenerator replaces the OpenAI generator with a custom implementation.
func WithGenerator(g Generator) Option {
	return func(c *clientConfig) {
		c.generator = g
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
