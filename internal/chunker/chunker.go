// Package chunker splits raw document text into overlapping fixed-size chunks,
// the unit of retrieval for the vector index.
package chunker

import (
	"fmt"
	"strings"

	"github.com/askdoc/askdoc/internal/domain"
)

// DefaultSeparator is the boundary chunks prefer to end on.
const DefaultSeparator = "\n"

// Config controls chunk sizing. Sizes and offsets are measured in runes.
type Config struct {
	ChunkSize int
	Overlap   int
	Separator string
}

// Chunker splits text into chunks of at most ChunkSize runes, where
// consecutive chunks share Overlap runes. Chunk boundaries snap to the
// last separator inside the window when one exists, and fall back to a
// hard cut otherwise.
type Chunker struct {
	size    int
	overlap int
	sep     []rune
}

// New validates the configuration and creates a Chunker.
func New(cfg Config) (*Chunker, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", cfg.ChunkSize, cfg.Overlap)
	}
	sep := cfg.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Chunker{size: cfg.ChunkSize, overlap: cfg.Overlap, sep: []rune(sep)}, nil
}

// Split chunks the text. A blank document yields no chunks and no error.
// The output is a pure function of (text, config): chunk IDs are ordinal
// and offsets point at the chunk start in the original text.
func (c *Chunker) Split(text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)

	var chunks []domain.Chunk
	start := 0
	for {
		if len(runes)-start <= c.size {
			chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: string(runes[start:]), Offset: start})
			return chunks
		}

		end := start + c.size
		cut := c.lastBoundary(runes, start, end)
		if cut <= start {
			cut = end // no separator in the window, hard slice
		}
		chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: string(runes[start:cut]), Offset: start})

		next := cut - c.overlap
		if next <= start {
			next = cut // overlap would stall on a short chunk
		}
		start = next
	}
}

// lastBoundary returns the largest p in (start, end] where the separator
// ends exactly at p, or start when the window holds no separator.
func (c *Chunker) lastBoundary(runes []rune, start, end int) int {
	n := len(c.sep)
	for p := end; p-n >= start && p > start; p-- {
		if runesEqual(runes[p-n:p], c.sep) {
			return p
		}
	}
	return start
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
