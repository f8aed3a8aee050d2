package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brikkle/chatbot/internal/api/handlers"
	"github.com/brikkle/chatbot/internal/config"
	"github.com/brikkle/chatbot/internal/corpus"
	"github.com/brikkle/chatbot/internal/index"
	"github.com/brikkle/chatbot/internal/jobs"
	"github.com/brikkle/chatbot/internal/llm"
	"github.com/brikkle/chatbot/internal/server"
	"github.com/brikkle/chatbot/internal/service"
	"github.com/brikkle/chatbot/internal/telemetry"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// sweepInterval is how often expired sessions are evicted.
const sweepInterval = 10 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chatbot API server",
		Long:  "Load the knowledge base, prepare the vector index, and serve the chat API",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
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

	ix, err := index.Open(ctx, index.OpenConfig{
		Dir:              cfg.IndexDir,
		Model:            cfg.EmbeddingModel,
		RebuildOnCorrupt: cfg.RebuildOnCorrupt,
	}, chunks, client)
	if err != nil {
		return fmt.Errorf("failed to prepare vector index: %w", err)
	}

	ragSvc := service.NewRAGService(ix, client, service.RAGConfig{
		TopK:           cfg.RetrievalTopK,
		ScoreThreshold: cfg.ScoreThreshold,
		IndexDir:       cfg.IndexDir,
	})
	sessions := service.NewSessionStore(cfg.SessionTTL, cfg.SessionHistoryLimit)
	chatSvc := service.NewChatService(sessions, ragSvc, client)

	sweeper := jobs.NewSessionSweeper(sessions)
	sweepWorker := jobs.NewWorker(sweeper, sweepInterval)
	go sweepWorker.Start(ctx)

	routerCfg := server.RouterConfig{
		ChatHandler:   handlers.NewChatHandler(chatSvc),
		SystemHandler: handlers.NewSystemHandler(ragSvc, sessions),
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.NewRouter(routerCfg),
	}

	go func() {
		log.Printf("starting server on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	sweepWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
