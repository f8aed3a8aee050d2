package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("BRIKKLE_PORT", "9090")
	t.Setenv("BRIKKLE_DEBUG", "true")
	t.Setenv("BRIKKLE_OPENAI_API_KEY", "sk-test")
	t.Setenv("BRIKKLE_CORPUS_PATH", "/srv/kb/data.txt")
	t.Setenv("BRIKKLE_CHUNK_SIZE", "500")
	t.Setenv("BRIKKLE_SCORE_THRESHOLD", "0.75")
	t.Setenv("BRIKKLE_SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "/srv/kb/data.txt", cfg.CorpusPath)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 0.75, cfg.ScoreThreshold)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "data/data.txt", cfg.CorpusPath)
	assert.Equal(t, "data/vectorstore", cfg.IndexDir)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.Equal(t, 0.6, cfg.ScoreThreshold)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.SessionHistoryLimit)
	assert.True(t, cfg.RebuildOnCorrupt)
}

func TestHasOpenAI(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "sk-test"}
	assert.True(t, cfg.HasOpenAI())

	cfg.OpenAIAPIKey = ""
	assert.False(t, cfg.HasOpenAI())
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "8081"}
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
}
