package domain

// Chunk is a bounded, possibly overlapping piece of a source document.
// IDs are ordinal, assigned at split time, unique within one document.
type Chunk struct {
	ID     int
	Text   string
	Offset int // rune offset of the chunk start in the original text
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the result of a retrieval-augmented generation call.
// SourceChunks are the chunks that made it into the prompt, ranked order.
type Answer struct {
	Text         string
	SourceChunks []Chunk
}
