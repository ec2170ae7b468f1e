// Package index provides an immutable in-memory vector index over the
// chunks of a single document. Similarity search is a data-structure
// operation only; it knows nothing about the embedding model beyond the
// vector dimensionality fixed at build time.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/askdoc/askdoc/internal/domain"
)

// Index maps chunk ids to their embedding vectors and source text.
// Immutable after Build, safe for concurrent Search.
type Index struct {
	dim     int
	chunks  []domain.Chunk
	vectors [][]float32
	norms   []float64
}

// Build creates an index from chunks and their positionally aligned vectors.
// A zero-chunk document cannot be indexed and fails with ErrEmptyDocument.
func Build(chunks []domain.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrDimensionMismatch, len(chunks), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vector", domain.ErrDimensionMismatch)
	}

	ix := &Index{
		dim:     dim,
		chunks:  make([]domain.Chunk, len(chunks)),
		vectors: make([][]float32, len(vectors)),
		norms:   make([]float64, len(vectors)),
	}
	copy(ix.chunks, chunks)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
		ix.vectors[i] = append([]float32(nil), v...)
		ix.norms[i] = norm(v)
	}
	return ix, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Dimensions returns the vector dimensionality fixed at build time.
func (ix *Index) Dimensions() int { return ix.dim }

// Search returns up to k chunks ranked by descending cosine similarity to
// the query vector. Ties are broken by ascending chunk id, so ranking is
// stable across repeated calls. k is clamped to the index size; k <= 0
// yields an empty result.
func (ix *Index) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.chunks) {
		k = len(ix.chunks)
	}

	qnorm := norm(query)
	scored := make([]domain.ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: ix.chunks[i],
			Score: cosine(query, qnorm, ix.vectors[i], ix.norms[i]),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	return scored[:k], nil
}

func cosine(q []float32, qnorm float64, v []float32, vnorm float64) float64 {
	if qnorm == 0 || vnorm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	return dot / (qnorm * vnorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
