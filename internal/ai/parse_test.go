package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlashcardsPlainArray(t *testing.T) {
	cards, err := ParseFlashcards(`[{"front":"H2O?","back":"Water"},{"front":"NaCl?","back":"Salt"}]`)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "H2O?", cards[0].Front)
	assert.Equal(t, "Salt", cards[1].Back)
}

func TestParseFlashcardsMarkdownFences(t *testing.T) {
	raw := "```json\n[{\"front\":\"Q\",\"back\":\"A\"}]\n```"
	cards, err := ParseFlashcards(raw)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Q", cards[0].Front)
}

func TestParseFlashcardsTrailingCommas(t *testing.T) {
	raw := `[{"front":"Q","back":"A",},]`
	cards, err := ParseFlashcards(raw)
	require.NoError(t, err)
	require.Len(t, cards, 1)
}

func TestParseFlashcardsSurroundingProse(t *testing.T) {
	raw := "Here are your flashcards:\n[{\"front\":\"Q\",\"back\":\"A\"}]\nLet me know if you need more."
	cards, err := ParseFlashcards(raw)
	require.NoError(t, err)
	require.Len(t, cards, 1)
}

func TestParseFlashcardsDropsEmptyEntries(t *testing.T) {
	raw := `[{"front":"Q","back":"A"},{"front":"  ","back":"B"},{"front":"C","back":""}]`
	cards, err := ParseFlashcards(raw)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Q", cards[0].Front)
}

func TestParseFlashcardsTrimsWhitespace(t *testing.T) {
	raw := `[{"front":"  Q  ","back":"  A  "}]`
	cards, err := ParseFlashcards(raw)
	require.NoError(t, err)
	assert.Equal(t, "Q", cards[0].Front)
	assert.Equal(t, "A", cards[0].Back)
}

func TestParseFlashcardsErrors(t *testing.T) {
	cases := map[string]string{
		"NoArray":       "I could not generate flashcards.",
		"MalformedJSON": `[{"front":"Q","back"}]`,
		"AllEmpty":      `[{"front":"","back":""}]`,
		"EmptyArray":    `[]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFlashcards(raw)
			assert.Error(t, err)
		})
	}
}

func TestEstimateCount(t *testing.T) {
	assert.Equal(t, 2, EstimateCount(100))
	assert.Equal(t, 2, EstimateCount(1000))
	assert.Equal(t, 3, EstimateCount(1800))
	assert.Equal(t, 5, EstimateCount(5000))
}
