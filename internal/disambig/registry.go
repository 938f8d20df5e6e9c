package disambig

import "github.com/hyperjump/termground/internal/models"

// Registry maps shortforms to their predictor. It is immutable once built.
type Registry struct {
	byShortform map[string]Predictor
}

// NewRegistry indexes predictors by every shortform they cover. When an
// acronym classifier and a context similarity model both cover a shortform,
// the acronym classifier is kept; otherwise the first registered wins.
func NewRegistry(predictors ...Predictor) *Registry {
	r := &Registry{byShortform: make(map[string]Predictor)}
	for _, p := range predictors {
		if p == nil {
			continue
		}
		for _, sf := range p.Shortforms() {
			cur, ok := r.byShortform[sf]
			if !ok || (cur.Type() != models.DisambigAdeft && p.Type() == models.DisambigAdeft) {
				r.byShortform[sf] = p
			}
		}
	}
	return r
}

// Get returns the predictor for shortform. A nil registry has none.
func (r *Registry) Get(shortform string) (Predictor, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.byShortform[shortform]
	return p, ok
}

// Len returns the number of covered shortforms.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byShortform)
}

// Shortforms returns the covered shortforms sorted.
func (r *Registry) Shortforms() []string {
	if r == nil {
		return nil
	}
	return sortedKeys(r.byShortform)
}

// Models describes every registered shortform, sorted by shortform.
func (r *Registry) Models() []ModelInfo {
	out := make([]ModelInfo, 0, r.Len())
	for _, sf := range r.Shortforms() {
		p := r.byShortform[sf]
		info := ModelInfo{Shortform: sf, Type: p.Type()}
		if d, ok := p.(describer); ok {
			info.Version = d.Version()
			info.Labels = d.Labels()
		}
		out = append(out, info)
	}
	return out
}
