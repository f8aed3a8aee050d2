package index

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/brikkle/chatbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: 0, Content: "first chunk", SourceOffset: 0},
		{ID: 1, Content: "second chunk", SourceOffset: 9},
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds index from chunks", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, []string{"first chunk", "second chunk"}).
			Return([][]float32{{1, 0}, {0, 1}}, nil)

		ix, err := Build(ctx, testChunks(), embedder, "test-model")

		require.NoError(t, err)
		assert.Equal(t, 2, ix.Len())
		assert.Equal(t, 2, ix.Dimension())
		embedder.AssertExpectations(t)
	})

	t.Run("embedding failure aborts the build", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).
			Return(nil, errors.New("rate limited"))

		_, err := Build(ctx, testChunks(), embedder, "test-model")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding knowledge base")
	})

	t.Run("rejects empty chunk set", func(t *testing.T) {
		_, err := Build(ctx, nil, new(MockEmbedder), "test-model")
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("loads existing index without embedding", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Save(newTestIndex(t), dir))

		embedder := new(MockEmbedder)
		ix, err := Open(ctx, OpenConfig{Dir: dir, Model: "test-model"}, testChunks(), embedder)

		require.NoError(t, err)
		assert.Equal(t, 4, ix.Len())
		embedder.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	})

	t.Run("builds and persists when absent", func(t *testing.T) {
		dir := t.TempDir()
		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).
			Return([][]float32{{1, 0}, {0, 1}}, nil)

		ix, err := Open(ctx, OpenConfig{Dir: dir, Model: "test-model"}, testChunks(), embedder)

		require.NoError(t, err)
		assert.Equal(t, 2, ix.Len())

		// A second open finds the persisted index.
		reopened, err := Open(ctx, OpenConfig{Dir: dir, Model: "test-model"}, testChunks(), new(MockEmbedder))
		require.NoError(t, err)
		assert.Equal(t, 2, reopened.Len())
		embedder.AssertNumberOfCalls(t, "EmbedBatch", 1)
	})

	t.Run("rebuilds a corrupt index when policy allows", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(DBPath(dir), []byte("garbage"), 0o644))

		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).
			Return([][]float32{{1, 0}, {0, 1}}, nil)

		ix, err := Open(ctx, OpenConfig{Dir: dir, Model: "test-model", RebuildOnCorrupt: true}, testChunks(), embedder)

		require.NoError(t, err)
		assert.Equal(t, 2, ix.Len())
	})

	t.Run("fails on a corrupt index when policy forbids rebuild", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(DBPath(dir), []byte("garbage"), 0o644))

		embedder := new(MockEmbedder)
		_, err := Open(ctx, OpenConfig{Dir: dir, Model: "test-model", RebuildOnCorrupt: false}, testChunks(), embedder)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnreadable)
		embedder.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	})
}
