package index

import (
	"os"
	"testing"

	"github.com/brikkle/chatbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := newTestIndex(t)

	require.NoError(t, Save(original, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, original.Len(), loaded.Len())
	assert.Equal(t, original.Dimension(), loaded.Dimension())
	assert.Equal(t, original.Model(), loaded.Model())

	// Query results are identical before and after persistence.
	query := []float32{0.8, 0.2, 0}
	assert.Equal(t, original.Query(query, 3, 0.1), loaded.Query(query, 3, 0.1))
}

func TestLoad_Absent(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(DBPath(dir), []byte("this is not a sqlite database"), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestSave_Overwrite(t *testing.T) {
	dir := t.TempDir()
	first := newTestIndex(t)
	require.NoError(t, Save(first, dir))

	second, err := New([]Entry{
		{Chunk: domain.Chunk{ID: 0, Content: "only chunk"}, Embedding: []float32{0, 1}},
	}, "other-model")
	require.NoError(t, err)
	require.NoError(t, Save(second, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, 2, loaded.Dimension())
	assert.Equal(t, "other-model", loaded.Model())
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	assert.Zero(t, FileSize(dir))

	require.NoError(t, Save(newTestIndex(t), dir))
	assert.Positive(t, FileSize(dir))
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.14159, -2.71828}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
}
