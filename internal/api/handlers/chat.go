package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brikkle/chatbot/internal/api"
	"github.com/brikkle/chatbot/internal/domain"
	"github.com/brikkle/chatbot/internal/service"
)

// maxMessageLength caps one chat message, in runes.
const maxMessageLength = 1000

// ChatOrchestrator defines the chat service surface the handler depends on.
type ChatOrchestrator interface {
	Handle(ctx context.Context, in service.HandleInput) (*service.HandleOutput, error)
}

type ChatHandler struct {
	svc ChatOrchestrator
}

func NewChatHandler(svc ChatOrchestrator) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"session_id"`
	IncludeSources bool   `json:"include_sources"`
}

type ChatResponse struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Timestamp string          `json:"timestamp"`
	Sources   []domain.Source `json:"sources"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		api.HandleError(w, domain.ErrEmptyMessage)
		return
	}
	if len([]rune(req.Message)) > maxMessageLength {
		api.HandleError(w, domain.ErrMessageTooLong)
		return
	}

	out, err := h.svc.Handle(r.Context(), service.HandleInput{
		Message:        req.Message,
		SessionID:      req.SessionID,
		IncludeSources: req.IncludeSources,
	})
	if err != nil {
		// The client went away: there is nobody to answer.
		if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, ChatResponse{
		Message:   out.Message,
		SessionID: out.SessionID,
		Timestamp: out.Timestamp.Format(time.RFC3339),
		Sources:   out.Sources,
	})
}
