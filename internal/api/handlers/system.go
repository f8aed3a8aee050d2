package handlers

import (
	"net/http"
	"time"

	"github.com/brikkle/chatbot/internal/api"
	"github.com/brikkle/chatbot/internal/service"
)

// Version is the public API version reported by the service.
const Version = "1.0.0"

// RAGStatsProvider reports knowledge-base index statistics.
type RAGStatsProvider interface {
	Stats() service.RAGStats
}

// SessionStatsProvider reports session-store statistics.
type SessionStatsProvider interface {
	Stats() service.SessionStats
}

type SystemHandler struct {
	rag      RAGStatsProvider
	sessions SessionStatsProvider
}

func NewSystemHandler(rag RAGStatsProvider, sessions SessionStatsProvider) *SystemHandler {
	return &SystemHandler{rag: rag, sessions: sessions}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	})
}

type StatsResponse struct {
	RAGService  service.RAGStats     `json:"rag_service"`
	ChatHistory service.SessionStats `json:"chat_history"`
	Timestamp   string               `json:"timestamp"`
	Status      string               `json:"status"`
}

func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, StatsResponse{
		RAGService:  h.rag.Stats(),
		ChatHistory: h.sessions.Stats(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Status:      "operational",
	})
}

type RootResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, RootResponse{
		Service: "Brikkle Chatbot API",
		Version: Version,
		Endpoints: map[string]string{
			"chat":   "/api/v1/chat",
			"health": "/api/v1/health",
			"stats":  "/api/v1/stats",
		},
	})
}
