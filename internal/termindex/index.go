// Package termindex provides the immutable mapping from lookup keys to terms.
package termindex

import (
	"fmt"
	"sort"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/normalize"
)

// Entry is a term together with its insertion position.
type Entry struct {
	Term    models.Term
	Ordinal int
}

// Stats summarizes an index.
type Stats struct {
	Terms      int            `json:"terms"`
	Keys       int            `json:"keys"`
	Namespaces map[string]int `json:"namespaces"`
	Organisms  map[string]int `json:"organisms"`
}

// TermIndex groups terms by normalized key and by exact text. It has no
// mutation API, so concurrent lookups need no locking.
type TermIndex struct {
	terms  []models.Term
	byNorm map[string][]int
	byText map[string][]int
	keys   []string
}

// Build validates every record and groups it under its normalized key.
// Any malformed record fails the whole build. NormText is recomputed from
// Text with n so the key is always a function of the surface form.
func Build(records []models.Term, n *normalize.Normalizer) (*TermIndex, error) {
	if n == nil {
		n = normalize.New()
	}
	idx := &TermIndex{
		terms:  make([]models.Term, 0, len(records)),
		byNorm: make(map[string][]int),
		byText: make(map[string][]int),
	}
	for i, rec := range records {
		if status, ok := models.ParseStatus(string(rec.Status)); ok {
			rec.Status = status
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		rec.NormText = n.Normalize(rec.Text)
		if rec.NormText == "" {
			return nil, fmt.Errorf("term %d: %w: text %q has an empty key", i, errs.ErrMalformedTerm, rec.Text)
		}
		ord := len(idx.terms)
		idx.terms = append(idx.terms, rec)
		if _, seen := idx.byNorm[rec.NormText]; !seen {
			idx.keys = append(idx.keys, rec.NormText)
		}
		idx.byNorm[rec.NormText] = append(idx.byNorm[rec.NormText], ord)
		idx.byText[rec.Text] = append(idx.byText[rec.Text], ord)
	}
	sort.Strings(idx.keys)
	return idx, nil
}

// Lookup returns the entries for key in insertion order. Exact keys are
// matched against term text, all other kinds against the normalized key.
func (x *TermIndex) Lookup(key normalize.Key) []Entry {
	if key.Kind == models.MatchExact {
		return x.entries(x.byText[key.Value])
	}
	return x.entries(x.byNorm[key.Value])
}

// LookupNorm returns the entries filed under a normalized key.
func (x *TermIndex) LookupNorm(normText string) []Entry {
	return x.entries(x.byNorm[normText])
}

// Has reports whether any term is filed under the normalized key.
func (x *TermIndex) Has(normText string) bool {
	return len(x.byNorm[normText]) > 0
}

func (x *TermIndex) entries(ords []int) []Entry {
	if len(ords) == 0 {
		return []Entry{}
	}
	out := make([]Entry, len(ords))
	for i, o := range ords {
		out[i] = Entry{Term: x.terms[o], Ordinal: o}
	}
	return out
}

// Len returns the number of indexed terms.
func (x *TermIndex) Len() int {
	return len(x.terms)
}

// Terms returns a copy of all terms in insertion order.
func (x *TermIndex) Terms() []models.Term {
	return append([]models.Term(nil), x.terms...)
}

// Keys returns the sorted distinct normalized keys.
func (x *TermIndex) Keys() []string {
	return append([]string(nil), x.keys...)
}

// Stats counts terms per namespace and organism.
func (x *TermIndex) Stats() Stats {
	s := Stats{
		Terms:      len(x.terms),
		Keys:       len(x.keys),
		Namespaces: make(map[string]int),
		Organisms:  make(map[string]int),
	}
	for _, t := range x.terms {
		s.Namespaces[t.Namespace]++
		if t.Organism != "" {
			s.Organisms[t.Organism]++
		}
	}
	return s
}
