package normalize

import "github.com/hyperjump/termground/internal/models"

// StopEntry forbids one surface form from grounding to one identifier.
type StopEntry struct {
	Text      string `yaml:"text" json:"text"`
	Namespace string `yaml:"namespace" json:"namespace"`
	ID        string `yaml:"id" json:"id"`
}

// Tables holds the data-driven parts of normalization.
type Tables struct {
	Stoplist        []StopEntry `yaml:"stoplist"`
	Depluralization []Rule      `yaml:"depluralization"`
}

// Stoplist is an immutable set of forbidden (key, identifier) pairs.
// Keys are normalized when the list is built, so case and punctuation
// variants of a blocked surface form are blocked too.
type Stoplist struct {
	blocked map[string]map[models.EntityKey]struct{}
	size    int
}

// NewStoplist normalizes entries with n. Entries with an empty text are skipped.
func NewStoplist(n *Normalizer, entries []StopEntry) *Stoplist {
	s := &Stoplist{blocked: make(map[string]map[models.EntityKey]struct{})}
	for _, e := range entries {
		key := n.Normalize(e.Text)
		if key == "" {
			continue
		}
		ids, ok := s.blocked[key]
		if !ok {
			ids = make(map[models.EntityKey]struct{})
			s.blocked[key] = ids
		}
		ek := models.EntityKey{Namespace: e.Namespace, ID: e.ID}
		if _, dup := ids[ek]; !dup {
			ids[ek] = struct{}{}
			s.size++
		}
	}
	return s
}

// Blocks reports whether key must not ground to id. A nil Stoplist blocks nothing.
func (s *Stoplist) Blocks(key string, id models.EntityKey) bool {
	if s == nil {
		return false
	}
	_, ok := s.blocked[key][id]
	return ok
}

// Len returns the number of distinct forbidden pairs.
func (s *Stoplist) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}
