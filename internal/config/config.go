package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Host  string `envconfig:"HOST" default:"0.0.0.0"`
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	CorpusPath string `envconfig:"CORPUS_PATH" default:"data/data.txt"`
	IndexDir   string `envconfig:"INDEX_DIR" default:"data/vectorstore"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	RetrievalTopK  int     `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	ScoreThreshold float64 `envconfig:"SCORE_THRESHOLD" default:"0.6"`

	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionHistoryLimit int           `envconfig:"SESSION_HISTORY_LIMIT" default:"5"`

	// RebuildOnCorrupt controls what happens when the persisted vector index
	// is present but unreadable: rebuild from the corpus (true) or refuse to
	// start (false).
	RebuildOnCorrupt bool `envconfig:"REBUILD_ON_CORRUPT" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("BRIKKLE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
