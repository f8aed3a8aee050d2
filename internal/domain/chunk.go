package domain

// Chunk is a bounded slice of the knowledge-base corpus used as the unit of
// retrieval. Chunks are immutable once produced; a new set is generated only
// by a full re-index.
type Chunk struct {
	ID           int
	Content      string
	SourceOffset int
}

// Source is a retrieved chunk together with its similarity score, exposed to
// callers that request grounding information.
type Source struct {
	ChunkID int     `json:"chunk_id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
