// Package keyword provides full-text search over entity names and spelling
// suggestions over index keys.
package keyword

import (
	"context"
	"strings"

	"github.com/hyperjump/termground/internal/models"
)

// EntityDocument is the searchable form of one (namespace, id) entity.
type EntityDocument struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Synonyms  string `json:"synonyms"`
	Organism  string `json:"organism"`
}

// SearchOptions optional parameters for entity search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies matches in the entry name over synonym matches.
	NameBoost float64
	// FuzzyEnabled enables typo tolerant matching.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	Fuzziness int
	// Namespace restricts hits to one namespace when set.
	Namespace string
}

// KeywordIndex defines entity search operations.
type KeywordIndex interface {
	IndexAll(ctx context.Context, docs []EntityDocument) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single entity search hit. ID is the "NS:ID" grounding.
type KeywordResult struct {
	ID    string
	Score float64
}

// TermDictionary provides access to the key dictionary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns all unique keys.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns how many records share a key.
	GetTermFrequency(term string) (int, error)
	// ContainsTerm checks if a key exists.
	ContainsTerm(term string) (bool, error)
}

// DocumentsFromTerms groups terms into one document per entity, in first
// appearance order. Synonyms are the distinct surface texts.
func DocumentsFromTerms(terms []models.Term) []EntityDocument {
	type acc struct {
		doc   EntityDocument
		texts []string
		seen  map[string]struct{}
	}
	byKey := make(map[models.EntityKey]*acc)
	var order []models.EntityKey
	for _, t := range terms {
		k := t.Key()
		a, ok := byKey[k]
		if !ok {
			a = &acc{
				doc: EntityDocument{
					ID:        t.Grounding(),
					Namespace: t.Namespace,
					Name:      t.EntryName,
					Organism:  t.Organism,
				},
				seen: make(map[string]struct{}),
			}
			byKey[k] = a
			order = append(order, k)
		}
		if _, dup := a.seen[t.Text]; !dup {
			a.seen[t.Text] = struct{}{}
			a.texts = append(a.texts, t.Text)
		}
	}
	out := make([]EntityDocument, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		a.doc.Synonyms = strings.Join(a.texts, " | ")
		out = append(out, a.doc)
	}
	return out
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
