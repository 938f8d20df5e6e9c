package keyword

import (
	"sort"
	"sync"
)

// Suggestion is a dictionary key close to a misspelled input.
type Suggestion struct {
	Term      string  // The suggested key
	Distance  int     // Edit distance from the input
	Frequency int     // Number of records filed under the key
	Score     float64 // Combined score for ranking
}

// SpellChecker suggests dictionary keys within a small edit distance.
// The key list is loaded lazily once; the dictionary is assumed immutable.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	once  sync.Once
	terms []string
	err   error
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores keys shared by fewer than f records.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a new SpellChecker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SpellChecker) load() ([]string, error) {
	s.once.Do(func() {
		s.terms, s.err = s.dictionary.GetAllTerms()
	})
	return s.terms, s.err
}

// Suggest returns keys within the maximum distance of term, best first.
// Ties on score fall back to the key so output is deterministic.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	terms, err := s.load()
	if err != nil {
		return nil
	}
	suggestions := make([]Suggestion, 0)
	n := len([]rune(term))
	for _, dictTerm := range terms {
		if dictTerm == term {
			continue
		}
		if diff := len([]rune(dictTerm)) - n; diff > s.maxDistance || -diff > s.maxDistance {
			continue
		}
		distance := DamerauLevenshteinDistance(term, dictTerm)
		if distance > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(dictTerm)
		if err != nil || freq < s.minFreq {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Term:      dictTerm,
			Distance:  distance,
			Frequency: freq,
			Score:     float64(freq) / float64(distance+1),
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Distance != suggestions[j].Distance {
			return suggestions[i].Distance < suggestions[j].Distance
		}
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Term < suggestions[j].Term
	})
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// IsMisspelled reports whether term is absent from the dictionary.
func (s *SpellChecker) IsMisspelled(term string) bool {
	ok, err := s.dictionary.ContainsTerm(term)
	return err == nil && !ok
}
