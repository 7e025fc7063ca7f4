package ngram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveypulse/backend/internal/models"
)

func rowWithTokens(qCode string, tokens ...string) models.EnrichedResponse {
	return models.EnrichedResponse{
		Answers: map[string]models.Answer{
			qCode: {Tokens: tokens},
		},
	}
}

func TestGenerate(t *testing.T) {
	rows := []models.EnrichedResponse{
		rowWithTokens("q1", "free", "maternal", "care"),
		rowWithTokens("q1", "maternal", "care"),
	}

	ngrams := Generate(rows, "q1", nil)

	assert.Equal(t, 1, ngrams.Unigrams["free"])
	assert.Equal(t, 2, ngrams.Unigrams["maternal"])
	assert.Equal(t, 2, ngrams.Unigrams["care"])
	assert.Equal(t, 2, ngrams.Bigrams["maternal care"])
	assert.Equal(t, 1, ngrams.Bigrams["free maternal"])
	assert.Equal(t, 1, ngrams.Trigrams["free maternal care"])
}

func TestGenerate_Stopwords(t *testing.T) {
	rows := []models.EnrichedResponse{
		rowWithTokens("q1", "want", "free", "care"),
	}
	stopwords := map[string]struct{}{"want": {}}

	ngrams := Generate(rows, "q1", stopwords)

	assert.Zero(t, ngrams.Unigrams["want"])
	assert.Equal(t, 1, ngrams.Unigrams["free"])
	// Windows containing a stopword are dropped entirely.
	assert.Zero(t, ngrams.Bigrams["want free"])
	assert.Equal(t, 1, ngrams.Bigrams["free care"])
	assert.Empty(t, ngrams.Trigrams)
}

func TestGenerate_IgnoresRowsWithoutTheQuestion(t *testing.T) {
	rows := []models.EnrichedResponse{
		rowWithTokens("q1", "care"),
		rowWithTokens("q2", "salary"),
	}

	ngrams := Generate(rows, "q2", nil)

	assert.Equal(t, map[string]int{"salary": 1}, ngrams.Unigrams)
}

func TestGenerate_UnigramTotalMatchesTokenCount(t *testing.T) {
	rows := []models.EnrichedResponse{
		rowWithTokens("q1", "a", "b", "c"),
		rowWithTokens("q1", "a", "b"),
	}

	ngrams := Generate(rows, "q1", nil)

	total := 0
	for _, count := range ngrams.Unigrams {
		total += count
	}
	assert.Equal(t, 5, total)
}

func TestGenerate_Deterministic(t *testing.T) {
	rows := []models.EnrichedResponse{
		rowWithTokens("q1", "free", "maternal", "care", "now"),
	}

	first := Generate(rows, "q1", nil)
	second := Generate(rows, "q1", nil)

	assert.Equal(t, first, second)
}

func TestLoadStopwords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"en": ["the", "a"], "es": ["el"]}`), 0o644))

	byLanguage, err := LoadStopwords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "a"}, byLanguage["en"])
	assert.Equal(t, []string{"el"}, byLanguage["es"])
	assert.Empty(t, byLanguage["fr"])
}

func TestLoadStopwords_MissingFile(t *testing.T) {
	_, err := LoadStopwords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGenerate_EmptyInput(t *testing.T) {
	ngrams := Generate(nil, "q1", nil)

	assert.Empty(t, ngrams.Unigrams)
	assert.Empty(t, ngrams.Bigrams)
	assert.Empty(t, ngrams.Trigrams)
}
