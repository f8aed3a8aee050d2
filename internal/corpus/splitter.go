package corpus

import (
	"unicode"

	"github.com/brikkle/chatbot/internal/domain"
)

// SplitConfig controls the sliding-window chunking of the corpus.
type SplitConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultSplitConfig provides sane defaults for chunking.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// boundaryWindow is how far back from the hard cut Split will look for a
// whitespace boundary before giving up and cutting mid-word.
const boundaryWindow = 100

// Split produces an ordered sequence of chunks covering every rune of text.
// Consecutive chunks share exactly cfg.Overlap runes: each chunk starts
// Overlap runes before the previous chunk's (possibly whitespace-adjusted)
// end. Offsets are rune offsets into the source text.
func Split(text string, cfg SplitConfig) []domain.Chunk {
	if text == "" {
		return nil
	}
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 2
	}

	runes := []rune(text)
	if len(runes) <= cfg.ChunkSize {
		return []domain.Chunk{{ID: 0, Content: text, SourceOffset: 0}}
	}

	chunks := make([]domain.Chunk, 0, len(runes)/(cfg.ChunkSize-cfg.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			// Prefer a whitespace boundary near the hard cut. The floor keeps
			// the next window strictly ahead of this one.
			floor := end - boundaryWindow
			if floor <= start+cfg.Overlap {
				floor = start + cfg.Overlap + 1
			}
			for i := end; i > floor; i-- {
				if unicode.IsSpace(runes[i-1]) {
					end = i
					break
				}
			}
		}

		chunks = append(chunks, domain.Chunk{
			ID:           len(chunks),
			Content:      string(runes[start:end]),
			SourceOffset: start,
		})

		if end >= len(runes) {
			break
		}
		start = end - cfg.Overlap
	}

	return chunks
}
