// Package organism narrows candidate sets by species priority.
package organism

import "github.com/hyperjump/termground/internal/models"

// Human is the NCBI taxonomy code used when no priority is configured.
const Human = "9606"

// FilterFunc keeps species-agnostic items and, among species-tagged items,
// only those of the first priority code that occurs. When nothing is tagged
// or no priority code occurs, items are returned unchanged. Order is kept.
func FilterFunc[T any](items []T, organismOf func(T) string, priority []string) []T {
	present := make(map[string]struct{})
	for _, it := range items {
		if org := organismOf(it); org != "" {
			present[org] = struct{}{}
		}
	}
	if len(present) == 0 {
		return items
	}
	winner := ""
	for _, code := range priority {
		if _, ok := present[code]; ok {
			winner = code
			break
		}
	}
	if winner == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if org := organismOf(it); org == "" || org == winner {
			out = append(out, it)
		}
	}
	return out
}

// Filter applies FilterFunc to terms.
func Filter(terms []models.Term, priority []string) []models.Term {
	return FilterFunc(terms, func(t models.Term) string { return t.Organism }, priority)
}

// FilterMatches applies FilterFunc to scored matches.
func FilterMatches(matches []models.ScoredMatch, priority []string) []models.ScoredMatch {
	return FilterFunc(matches, func(m models.ScoredMatch) string { return m.Term.Organism }, priority)
}
