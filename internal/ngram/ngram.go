// Package ngram computes word frequency tables over the tokenized lemmatized
// text of a campaign's responses.
package ngram

import (
	"strings"

	"github.com/surveypulse/backend/internal/models"
)

// Generate builds the unigram, bigram and trigram frequency tables for one
// question code. Rows without an answer for the question, or with an empty
// token sequence, contribute nothing. Stopwords are excluded from every gram
// size. The mappings are unordered; ordering is an API-layer concern.
func Generate(rows []models.EnrichedResponse, qCode string, stopwords map[string]struct{}) models.Ngrams {
	ngrams := models.Ngrams{
		Unigrams: make(map[string]int),
		Bigrams:  make(map[string]int),
		Trigrams: make(map[string]int),
	}

	for i := range rows {
		answer, ok := rows[i].Answer(qCode)
		if !ok {
			continue
		}
		tokens := answer.Tokens

		for j := 0; j < len(tokens); j++ {
			if isStopword(stopwords, tokens[j]) {
				continue
			}
			word := strings.TrimSpace(tokens[j])
			if word == "" {
				continue
			}
			ngrams.Unigrams[word]++
		}

		for j := 0; j < len(tokens)-1; j++ {
			if isStopword(stopwords, tokens[j]) || isStopword(stopwords, tokens[j+1]) {
				continue
			}
			ngrams.Bigrams[tokens[j]+" "+tokens[j+1]]++
		}

		for j := 0; j < len(tokens)-2; j++ {
			if isStopword(stopwords, tokens[j]) || isStopword(stopwords, tokens[j+1]) || isStopword(stopwords, tokens[j+2]) {
				continue
			}
			ngrams.Trigrams[tokens[j]+" "+tokens[j+1]+" "+tokens[j+2]]++
		}
	}

	return ngrams
}

func isStopword(stopwords map[string]struct{}, word string) bool {
	_, ok := stopwords[word]
	return ok
}
