// Package taxonomy resolves leaf category codes against a campaign's static
// category tree.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/surveypulse/backend/internal/config"
)

// Resolver maps leaf category codes to their top-level parent and to a human
// readable description. Lookups of unknown codes fall back to the code
// itself; an unmapped code is its own top level, not an error.
type Resolver struct {
	parentOf      map[string]string
	descriptionOf map[string]string
}

func NewResolver(categories []config.ParentCategory) *Resolver {
	parentOf := make(map[string]string)
	descriptionOf := make(map[string]string)

	for _, parent := range categories {
		parentOf[parent.Code] = parent.Code
		descriptionOf[parent.Code] = parent.Description
		for code, description := range parent.Subcategories {
			parentOf[code] = parent.Code
			descriptionOf[code] = description
		}
	}

	return &Resolver{parentOf: parentOf, descriptionOf: descriptionOf}
}

// Parent returns the top-level code a leaf rolls up to, or the leaf itself
// when unmapped.
func (r *Resolver) Parent(code string) string {
	if parent, ok := r.parentOf[code]; ok {
		return parent
	}
	return code
}

// Description returns the display description for a code, or the code itself
// when unmapped.
func (r *Resolver) Description(code string) string {
	if description, ok := r.descriptionOf[code]; ok {
		return description
	}
	return code
}

// ParentCategory resolves a possibly multi-valued, '/'-joined canonical code
// to its top-level label: each leaf is mapped, the results are deduplicated,
// sorted and rejoined. The output is stable regardless of leaf order.
func (r *Resolver) ParentCategory(canonicalCode string) string {
	seen := make(map[string]bool)
	var parents []string
	for _, leaf := range strings.Split(canonicalCode, "/") {
		if leaf == "" {
			continue
		}
		parent := r.Parent(leaf)
		if !seen[parent] {
			seen[parent] = true
			parents = append(parents, parent)
		}
	}
	sort.Strings(parents)

	return strings.Join(parents, "/")
}

// JoinedDescription resolves a '/'-joined canonical code to a ' / '-joined,
// sorted, deduplicated description string.
func (r *Resolver) JoinedDescription(canonicalCode string) string {
	if description, ok := r.descriptionOf[canonicalCode]; ok {
		return description
	}
	seen := make(map[string]bool)
	var descriptions []string
	for _, leaf := range strings.Split(canonicalCode, "/") {
		if leaf == "" {
			continue
		}
		description := r.Description(leaf)
		if !seen[description] {
			seen[description] = true
			descriptions = append(descriptions, description)
		}
	}
	sort.Strings(descriptions)

	return strings.Join(descriptions, " / ")
}
