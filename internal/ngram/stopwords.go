package ngram

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadStopwords reads the base stopword lists, keyed by language code.
func LoadStopwords(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords file: %w", err)
	}

	byLanguage := make(map[string][]string)
	if err := json.Unmarshal(data, &byLanguage); err != nil {
		return nil, fmt.Errorf("failed to parse stopwords file: %w", err)
	}

	return byLanguage, nil
}
