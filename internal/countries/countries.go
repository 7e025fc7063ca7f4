// Package countries holds the static country reference data: alpha-2 code to
// display name and demonym. Loaded once at process start; codes missing from
// the file are tolerated by callers, never fatal.
package countries

import (
	"encoding/json"
	"fmt"
	"os"
)

type Info struct {
	Name    string `json:"name"`
	Demonym string `json:"demonym"`
}

type Reference struct {
	byAlpha2 map[string]Info
}

func Load(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read countries data: %w", err)
	}

	byAlpha2 := make(map[string]Info)
	if err := json.Unmarshal(data, &byAlpha2); err != nil {
		return nil, fmt.Errorf("failed to parse countries data: %w", err)
	}

	return &Reference{byAlpha2: byAlpha2}, nil
}

// NewReference builds a reference from an in-memory map. Used by tests.
func NewReference(byAlpha2 map[string]Info) *Reference {
	return &Reference{byAlpha2: byAlpha2}
}

func (r *Reference) Lookup(alpha2 string) (Info, bool) {
	info, ok := r.byAlpha2[alpha2]
	return info, ok
}

func (r *Reference) Len() int {
	return len(r.byAlpha2)
}
