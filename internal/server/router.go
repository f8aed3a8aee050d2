package server

import (
	"net/http"

	"github.com/brikkle/chatbot/internal/api/handlers"
	"github.com/brikkle/chatbot/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	SystemHandler *handlers.SystemHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	r.Use(middleware.CORS)

	r.Get("/", cfg.SystemHandler.Root)
	r.Get("/health", cfg.SystemHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.SystemHandler.Health)
		r.Post("/chat", cfg.ChatHandler.Chat)
		r.Get("/stats", cfg.SystemHandler.Stats)
	})

	return r
}
