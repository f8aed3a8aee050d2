package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brikkle/chatbot/internal/api"
	"github.com/brikkle/chatbot/internal/domain"
	"github.com/brikkle/chatbot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatOrchestrator is a mock implementation of ChatOrchestrator
type MockChatOrchestrator struct {
	mock.Mock
}

func (m *MockChatOrchestrator) Handle(ctx context.Context, in service.HandleInput) (*service.HandleOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HandleOutput), args.Error(1)
}

func postChat(t *testing.T, handler *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.Chat(w, req)
	return w
}

func TestChatHandler_Chat(t *testing.T) {
	t.Run("answers a valid message", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		svc.On("Handle", mock.Anything, service.HandleInput{Message: "what is Brikkle?"}).
			Return(&service.HandleOutput{
				Message:   "Brikkle tokenizes Nigerian real estate.",
				SessionID: "sess-1",
				Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			}, nil)

		w := postChat(t, NewChatHandler(svc), `{"message": "what is Brikkle?"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Brikkle tokenizes Nigerian real estate.", resp.Message)
		assert.Equal(t, "sess-1", resp.SessionID)
		assert.Equal(t, "2025-06-01T12:00:00Z", resp.Timestamp)
		assert.Nil(t, resp.Sources)
		svc.AssertExpectations(t)
	})

	t.Run("sources come back when requested", func(t *testing.T) {
		sources := []domain.Source{{ChunkID: 4, Content: "passage", Score: 0.82}}

		svc := new(MockChatOrchestrator)
		svc.On("Handle", mock.Anything, mock.MatchedBy(func(in service.HandleInput) bool {
			return in.IncludeSources
		})).Return(&service.HandleOutput{
			Message:   "answer",
			SessionID: "sess-2",
			Timestamp: time.Now().UTC(),
			Sources:   sources,
		}, nil)

		w := postChat(t, NewChatHandler(svc), `{"message": "hello", "include_sources": true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, 4, resp.Sources[0].ChunkID)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		w := postChat(t, NewChatHandler(svc), `{not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		w := postChat(t, NewChatHandler(svc), `{"session_id": "sess-1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "message is required")
		svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("whitespace-only message is rejected", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		w := postChat(t, NewChatHandler(svc), `{"message": "   \n\t "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("oversized message is rejected", func(t *testing.T) {
		long := strings.Repeat("a", maxMessageLength+1)
		body, err := json.Marshal(ChatRequest{Message: long})
		require.NoError(t, err)

		svc := new(MockChatOrchestrator)
		w := postChat(t, NewChatHandler(svc), string(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("message at the limit is accepted", func(t *testing.T) {
		exact := strings.Repeat("a", maxMessageLength)
		body, err := json.Marshal(ChatRequest{Message: exact})
		require.NoError(t, err)

		svc := new(MockChatOrchestrator)
		svc.On("Handle", mock.Anything, mock.Anything).
			Return(&service.HandleOutput{Message: "ok", SessionID: "sess-3", Timestamp: time.Now().UTC()}, nil)

		w := postChat(t, NewChatHandler(svc), string(body))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("orchestrator failure maps to a status code", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		svc.On("Handle", mock.Anything, mock.Anything).
			Return(nil, domain.NewDomainError(domain.ErrCodeUnavailable, "completion API unreachable"))

		w := postChat(t, NewChatHandler(svc), `{"message": "hello"}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("cancelled request writes nothing", func(t *testing.T) {
		svc := new(MockChatOrchestrator)
		svc.On("Handle", mock.Anything, mock.Anything).Return(nil, context.Canceled)

		w := postChat(t, NewChatHandler(svc), `{"message": "hello"}`)

		assert.Empty(t, w.Body.String())
	})
}
