package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/brikkle/chatbot/internal/config"
	"github.com/brikkle/chatbot/internal/corpus"
	"github.com/brikkle/chatbot/internal/index"
	"github.com/brikkle/chatbot/internal/llm"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector index from the knowledge base",
		Long:  "Re-embed the knowledge base corpus and overwrite the persisted vector index",
		RunE:  runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return llm.ErrNoAPIKey
	}

	text, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	chunks := corpus.Split(text, corpus.SplitConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})
	log.Printf("knowledge base split into %d chunks", len(chunks))

	client := llm.NewClientWithConfig(llm.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
	})

	ix, err := index.Build(ctx, chunks, client, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to build vector index: %w", err)
	}

	if err := index.Save(ix, cfg.IndexDir); err != nil {
		return fmt.Errorf("failed to persist vector index: %w", err)
	}

	fmt.Printf("indexed %d chunks (dimension %d) into %s\n", ix.Len(), ix.Dimension(), index.DBPath(cfg.IndexDir))
	return nil
}
