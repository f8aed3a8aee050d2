// Package corpus loads the static knowledge-base text and splits it into
// overlapping retrieval chunks.
package corpus

import (
	"fmt"
	"os"
	"strings"

	"github.com/brikkle/chatbot/internal/domain"
)

// Load reads the knowledge-base corpus from path. A missing or empty corpus
// is unrecoverable at startup and is reported as a domain error.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, fmt.Sprintf("knowledge base corpus not found at %s", path), err)
		}
		return "", fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrCorpusEmpty
	}

	return text, nil
}
