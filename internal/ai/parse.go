package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/awalczak/memodeck/internal/models"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// ParseFlashcards extracts a flashcard array from raw model output. Models
// wrap JSON in markdown fences or leave trailing commas often enough that
// both are tolerated; anything else fails and triggers a retry upstream.
func ParseFlashcards(raw string) ([]models.GeneratedFlashcard, error) {
	s := stripFences(strings.TrimSpace(raw))

	// Keep only the outermost array in case the model added prose.
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	s = trailingCommaRe.ReplaceAllString(s[start:end+1], "$1")

	var cards []models.GeneratedFlashcard
	if err := json.Unmarshal([]byte(s), &cards); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	out := cards[:0]
	for _, c := range cards {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		if c.Front == "" || c.Back == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("model output contained no usable flashcards")
	}
	return out, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
