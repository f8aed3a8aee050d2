// Package index provides the similarity-searchable vector index over the
// knowledge-base chunks, with a SQLite-persisted form so embeddings are only
// computed once.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/brikkle/chatbot/internal/domain"
)

var (
	// ErrNotFound is returned by Load when no persisted index exists
	ErrNotFound = errors.New("vector index not found")
	// ErrUnreadable is returned by Load when the persisted index cannot be parsed
	ErrUnreadable = errors.New("vector index unreadable")
	// ErrEmpty is returned when an index would be built from no entries
	ErrEmpty = errors.New("vector index has no entries")
)

// Entry pairs a chunk with its embedding.
type Entry struct {
	Chunk     domain.Chunk
	Embedding []float32
}

// Hit is a query result: a chunk with its similarity score.
type Hit struct {
	Chunk domain.Chunk
	Score float64
}

// Index is an immutable in-memory collection of (embedding, chunk) pairs.
// It is built or loaded once at startup and is safe for concurrent queries.
type Index struct {
	entries   []Entry
	dimension int
	model     string
}

// New constructs an index from entries, validating that every embedding has
// the same non-zero dimension.
func New(entries []Entry, model string) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	dimension := len(entries[0].Embedding)
	if dimension == 0 {
		return nil, fmt.Errorf("entry %d has an empty embedding", entries[0].Chunk.ID)
	}
	for _, e := range entries {
		if len(e.Embedding) != dimension {
			return nil, fmt.Errorf("entry %d has dimension %d, expected %d", e.Chunk.ID, len(e.Embedding), dimension)
		}
	}

	return &Index{
		entries:   entries,
		dimension: dimension,
		model:     model,
	}, nil
}

// Query returns up to k chunks whose cosine similarity to vector meets or
// exceeds threshold, ordered by descending score. A vector of the wrong
// dimension yields no hits.
func (ix *Index) Query(vector []float32, k int, threshold float64) []Hit {
	if k <= 0 || len(vector) != ix.dimension {
		return nil
	}

	hits := make([]Hit, 0, k)
	for _, e := range ix.entries {
		score := cosineSimilarity(vector, e.Embedding)
		if score >= threshold {
			hits = append(hits, Hit{Chunk: e.Chunk, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimension returns the embedding dimension.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Model returns the embedding model the index was built with.
func (ix *Index) Model() string {
	return ix.model
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
