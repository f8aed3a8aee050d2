package index

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/brikkle/chatbot/internal/domain"
)

// dbFileName is the serialized index inside the index directory.
const dbFileName = "index.db"

// DBPath returns the path of the persisted index file within dir.
func DBPath(dir string) string {
	return filepath.Join(dir, dbFileName)
}

// Save persists the index to dir as a single SQLite file. The database is
// written to a temp file and renamed into place, so a concurrent reader never
// observes a partially-written index.
func Save(ix *Index, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmpPath := DBPath(dir) + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing stale temp index: %w", err)
	}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return fmt.Errorf("opening temp index: %w", err)
	}

	if err := writeIndex(db, ix); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp index: %w", err)
	}

	if err := os.Rename(tmpPath, DBPath(dir)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("swapping index into place: %w", err)
	}
	return nil
}

func writeIndex(db *sql.DB, ix *Index) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning index write: %w", err)
	}
	defer tx.Rollback()

	schema := `
		CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		CREATE TABLE chunks (
			id            INTEGER PRIMARY KEY,
			content       TEXT NOT NULL,
			source_offset INTEGER NOT NULL,
			embedding     BLOB NOT NULL
		);`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}

	metaStmt, err := tx.Prepare("INSERT INTO meta (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing meta insert: %w", err)
	}
	defer metaStmt.Close()

	meta := map[string]string{
		"dimension": strconv.Itoa(ix.dimension),
		"model":     ix.model,
		"count":     strconv.Itoa(len(ix.entries)),
	}
	for key, value := range meta {
		if _, err := metaStmt.Exec(key, value); err != nil {
			return fmt.Errorf("writing meta %q: %w", key, err)
		}
	}

	chunkStmt, err := tx.Prepare("INSERT INTO chunks (id, content, source_offset, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer chunkStmt.Close()

	for _, e := range ix.entries {
		blob := float32SliceToBytes(e.Embedding)
		if _, err := chunkStmt.Exec(e.Chunk.ID, e.Chunk.Content, e.Chunk.SourceOffset, blob); err != nil {
			return fmt.Errorf("writing chunk %d: %w", e.Chunk.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads a previously persisted index from dir. It returns ErrNotFound
// when no index file exists and ErrUnreadable when the file cannot be parsed
// as a valid index.
func Load(dir string) (*Index, error) {
	path := DBPath(dir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("checking index file: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer db.Close()

	dimension, model, err := readMeta(db)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	entries, err := readChunks(db, dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	ix, err := New(entries, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return ix, nil
}

func readMeta(db *sql.DB) (dimension int, model string, err error) {
	rows, err := db.Query("SELECT key, value FROM meta")
	if err != nil {
		return 0, "", fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return 0, "", fmt.Errorf("scanning meta: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return 0, "", fmt.Errorf("iterating meta: %w", err)
	}

	dimension, err = strconv.Atoi(meta["dimension"])
	if err != nil || dimension <= 0 {
		return 0, "", fmt.Errorf("invalid dimension %q", meta["dimension"])
	}
	return dimension, meta["model"], nil
}

func readChunks(db *sql.DB, dimension int) ([]Entry, error) {
	rows, err := db.Query("SELECT id, content, source_offset, embedding FROM chunks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			chunk domain.Chunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.SourceOffset, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if len(blob) != dimension*4 {
			return nil, fmt.Errorf("chunk %d embedding has %d bytes, expected %d", chunk.ID, len(blob), dimension*4)
		}
		entries = append(entries, Entry{
			Chunk:     chunk,
			Embedding: bytesToFloat32Slice(blob),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return entries, nil
}

// FileSize reports the on-disk size of the persisted index, zero when absent.
func FileSize(dir string) int64 {
	info, err := os.Stat(DBPath(dir))
	if err != nil {
		return 0
	}
	return info.Size()
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	data := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	return data
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
