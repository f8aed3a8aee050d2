package index

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/brikkle/chatbot/internal/domain"
)

// Embedder generates embeddings for a batch of texts.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Build embeds every chunk and constructs a queryable index. An embedding
// failure aborts the build: a partially-embedded knowledge base must never
// serve retrieval.
func Build(ctx context.Context, chunks []domain.Chunk, embedder Embedder, model string) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmpty
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding knowledge base: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedded %d chunks, expected %d", len(embeddings), len(chunks))
	}

	entries := make([]Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = Entry{Chunk: c, Embedding: embeddings[i]}
	}

	return New(entries, model)
}

// OpenConfig controls the startup load-or-build protocol.
type OpenConfig struct {
	Dir   string
	Model string

	// RebuildOnCorrupt rebuilds from the corpus when the persisted index is
	// present but unreadable. When false, an unreadable index fails startup.
	RebuildOnCorrupt bool
}

// Open implements the two-state initialization protocol: try to load the
// persisted index; on absence (or corruption, policy permitting) build from
// the chunks, persist, and return the fresh index. Startup is idempotent and
// never re-embeds an intact knowledge base.
func Open(ctx context.Context, cfg OpenConfig, chunks []domain.Chunk, embedder Embedder) (*Index, error) {
	ix, err := Load(cfg.Dir)
	switch {
	case err == nil:
		log.Printf("loaded vector index from %s (%d chunks, dimension %d)", cfg.Dir, ix.Len(), ix.Dimension())
		return ix, nil
	case errors.Is(err, ErrNotFound):
		log.Printf("no vector index at %s, building from corpus", cfg.Dir)
	case errors.Is(err, ErrUnreadable):
		if !cfg.RebuildOnCorrupt {
			return nil, fmt.Errorf("persisted index is unreadable and rebuild-on-corrupt is disabled: %w", err)
		}
		log.Printf("vector index at %s is unreadable, rebuilding from corpus: %v", cfg.Dir, err)
	default:
		return nil, err
	}

	ix, err = Build(ctx, chunks, embedder, cfg.Model)
	if err != nil {
		return nil, err
	}

	if err := Save(ix, cfg.Dir); err != nil {
		return nil, fmt.Errorf("persisting vector index: %w", err)
	}

	log.Printf("built vector index with %d chunks (dimension %d)", ix.Len(), ix.Dimension())
	return ix, nil
}
