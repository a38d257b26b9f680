package ai

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
)

// Generator produces flashcard drafts from study text.
type Generator interface {
	Generate(ctx context.Context, text, language string, count int) ([]models.GeneratedFlashcard, error)
}

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Unconfigured is the Generator used when no API key is set; every call
// fails with a clear message instead of a nil dereference.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string, string, int) ([]models.GeneratedFlashcard, error) {
	return nil, fmt.Errorf("AI generation is not configured, set GEMINI_API_KEY")
}

// GeminiGenerator implements Generator using the Google Gemini SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for count front/back pairs in the given
// language. The model occasionally returns malformed JSON, so the call is
// retried with linear backoff before giving up.
func (g *GeminiGenerator) Generate(ctx context.Context, text, language string, count int) ([]models.GeneratedFlashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini")

	prompt := buildPrompt(text, language, count)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryBackoff):
			}
		}

		log.Debug("generation attempt %d/%d, model=%s", attempt, maxAttempts, g.model)
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err != nil {
			log.Warn("generation attempt %d failed: %v", attempt, err)
			lastErr = err
			continue
		}

		cards, err := ParseFlashcards(result.Text())
		if err != nil {
			log.Warn("generation attempt %d returned unparseable output: %v", attempt, err)
			lastErr = err
			continue
		}

		log.Info("generated %d flashcards in %d attempt(s)", len(cards), attempt)
		return cards, nil
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", maxAttempts, lastErr)
}

func buildPrompt(text, language string, count int) string {
	return fmt.Sprintf(`You are a flashcard author. From the study material below, write exactly %d flashcards in language %q.

Respond with ONLY a JSON array, no prose and no markdown, where each element is {"front": "...", "back": "..."}.
The front is a short question or term; the back is a concise answer or definition.

Study material:
%s`, count, language, text)
}

// EstimateCount sizes the requested deck from the input length, one card
// per 500 characters, clamped to the 2..5 range the API promises.
func EstimateCount(textLen int) int {
	n := textLen / 500
	if n < 2 {
		return 2
	}
	if n > 5 {
		return 5
	}
	return n
}
