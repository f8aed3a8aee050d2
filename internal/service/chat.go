package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brikkle/chatbot/internal/domain"
	"github.com/brikkle/chatbot/internal/telemetry"
)

// CompletionClient defines the interface for generating chat completions.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ContextRetriever defines the interface for fetching knowledge-base context.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Source, error)
}

// Sessions defines the session-store interface the orchestrator depends on.
type Sessions interface {
	GetOrCreate(id string) (string, []domain.Turn)
	Append(id string, role domain.Role, content string) error
}

// ChatService orchestrates one chat exchange: resolve session, retrieve
// context, assemble prompt, complete, record the exchange.
type ChatService struct {
	sessions   Sessions
	retriever  ContextRetriever
	completion CompletionClient
}

// NewChatService creates a new ChatService instance.
func NewChatService(sessions Sessions, retriever ContextRetriever, completion CompletionClient) *ChatService {
	return &ChatService{
		sessions:   sessions,
		retriever:  retriever,
		completion: completion,
	}
}

// HandleInput is one incoming chat message.
type HandleInput struct {
	Message        string
	SessionID      string
	IncludeSources bool
}

// HandleOutput is the orchestrator's answer. Sources is nil unless the
// caller asked for them.
type HandleOutput struct {
	Message   string
	SessionID string
	Timestamp time.Time
	Sources   []domain.Source
}

// Handle processes one chat message. Retrieval is best-effort: on failure the
// answer proceeds ungrounded. A completion failure after retries yields the
// fallback answer, not an error; only caller cancellation aborts the exchange
// (and then no assistant turn is recorded).
func (s *ChatService) Handle(ctx context.Context, in HandleInput) (*HandleOutput, error) {
	sessionID, history := s.sessions.GetOrCreate(in.SessionID)

	ctx, span := telemetry.StartSpan(ctx, "ChatService.Handle", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "chat",
	})
	defer span.End()

	sources, err := s.retriever.Retrieve(ctx, in.Message)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("retrieval degraded for session %s: %v", sessionID, err)
		sources = nil
	}

	prompt := BuildPrompt(sources, history, in.Message)

	answer, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// The caller abandoned the request: record nothing.
			return nil, fmt.Errorf("completion cancelled: %w", err)
		}
		log.Printf("completion failed for session %s, answering with fallback: %v", sessionID, err)
		telemetry.CaptureError(ctx, err)
		answer = FallbackAnswer
	}

	if err := s.sessions.Append(sessionID, domain.RoleUser, in.Message); err != nil {
		log.Printf("failed to record user turn for session %s: %v", sessionID, err)
	}
	if err := s.sessions.Append(sessionID, domain.RoleAssistant, answer); err != nil {
		log.Printf("failed to record assistant turn for session %s: %v", sessionID, err)
	}

	out := &HandleOutput{
		Message:   answer,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	if in.IncludeSources {
		out.Sources = sources
	}
	return out, nil
}
