package service

import (
	"context"
	"fmt"

	"github.com/brikkle/chatbot/internal/domain"
	"github.com/brikkle/chatbot/internal/index"
	"github.com/brikkle/chatbot/internal/telemetry"
)

// QueryEmbedder defines the interface for embedding a retrieval query.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RAGConfig controls retrieval behavior.
type RAGConfig struct {
	TopK           int
	ScoreThreshold float64
	IndexDir       string
}

// DefaultRAGConfig provides the reference retrieval parameters.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		TopK:           5,
		ScoreThreshold: 0.6,
	}
}

// RAGService retrieves knowledge-base context for incoming queries. The
// underlying index is immutable after startup, so the service is safe for
// concurrent use.
type RAGService struct {
	index    *index.Index
	embedder QueryEmbedder
	cfg      RAGConfig
}

// NewRAGService creates a new RAGService instance.
func NewRAGService(ix *index.Index, embedder QueryEmbedder, cfg RAGConfig) *RAGService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultRAGConfig().TopK
	}
	return &RAGService{
		index:    ix,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Retrieve embeds the query and returns up to TopK chunks scoring at or
// above the configured threshold, best first. A pure read: no state is
// mutated.
func (s *RAGService) Retrieve(ctx context.Context, query string) ([]domain.Source, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	vector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits := s.index.Query(vector, s.cfg.TopK, s.cfg.ScoreThreshold)
	if len(hits) == 0 {
		return nil, nil
	}

	sources := make([]domain.Source, len(hits))
	for i, hit := range hits {
		sources[i] = domain.Source{
			ChunkID: hit.Chunk.ID,
			Content: hit.Chunk.Content,
			Score:   hit.Score,
		}
	}
	return sources, nil
}

// RAGStats describes the vector store backing the service.
type RAGStats struct {
	TotalDocuments     int    `json:"total_documents"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	ModelName          string `json:"model_name"`
	IndexType          string `json:"index_type"`
	VectorStoreSize    int64  `json:"vector_store_size"`
}

// Stats reports vector-store statistics for the stats endpoint.
func (s *RAGService) Stats() RAGStats {
	return RAGStats{
		TotalDocuments:     s.index.Len(),
		EmbeddingDimension: s.index.Dimension(),
		ModelName:          s.index.Model(),
		IndexType:          "sqlite",
		VectorStoreSize:    index.FileSize(s.cfg.IndexDir),
	}
}
