// Package grounding maps surface strings to ranked, namespaced identifiers.
package grounding

import (
	"context"

	"github.com/hyperjump/termground/internal/keyword"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/normalize"
	"github.com/hyperjump/termground/internal/organism"
	"github.com/hyperjump/termground/internal/ranking"
	"github.com/hyperjump/termground/internal/termindex"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds GroundBatch when no limit is given.
const DefaultBatchConcurrency = 8

// GroundOptions narrows a grounding call.
type GroundOptions struct {
	// Organisms is the species priority; nil uses the grounder default.
	Organisms []string
	// Namespaces restricts results to these namespaces when non-empty.
	Namespaces []string
	// Limit truncates the ranked list when positive.
	Limit int
}

// Grounder orchestrates normalization, lookup, filtering, scoring and ranking.
// It holds only read-only state and is safe for concurrent use.
type Grounder struct {
	index      *termindex.TermIndex
	normalizer *normalize.Normalizer
	scorer     ranking.Scorer
	ranker     *ranking.Ranker
	stoplist   *normalize.Stoplist
	organisms  []string
	spell      *keyword.SpellChecker
	logger     *zap.Logger
}

// Option configures a Grounder.
type Option func(*Grounder)

// WithScorer sets the match scorer.
func WithScorer(s ranking.Scorer) Option {
	return func(g *Grounder) {
		if s != nil {
			g.scorer = s
		}
	}
}

// WithNamespacePriority sets the tie-break order of namespaces.
func WithNamespacePriority(order []string) Option {
	return func(g *Grounder) {
		g.ranker = ranking.NewRanker(ranking.NewNamespacePriority(order))
	}
}

// WithStoplist sets the forbidden (key, identifier) pairs.
func WithStoplist(s *normalize.Stoplist) Option {
	return func(g *Grounder) {
		g.stoplist = s
	}
}

// WithDefaultOrganisms sets the species priority used when a call gives none.
func WithDefaultOrganisms(codes []string) Option {
	return func(g *Grounder) {
		g.organisms = append([]string(nil), codes...)
	}
}

// WithSpellChecker enables Suggest.
func WithSpellChecker(s *keyword.SpellChecker) Option {
	return func(g *Grounder) {
		g.spell = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grounder) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Grounder over an already built index. The normalizer must be
// the one the index was built with.
func New(index *termindex.TermIndex, normalizer *normalize.Normalizer, opts ...Option) *Grounder {
	if normalizer == nil {
		normalizer = normalize.New()
	}
	g := &Grounder{
		index:      index,
		normalizer: normalizer,
		scorer:     ranking.NewLogisticScorer(nil),
		ranker:     ranking.NewRanker(nil),
		organisms:  []string{organism.Human},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Index returns the index the grounder reads from.
func (g *Grounder) Index() *termindex.TermIndex {
	return g.index
}

// Normalizer returns the normalizer used for lookup keys.
func (g *Grounder) Normalizer() *normalize.Normalizer {
	return g.normalizer
}

type hit struct {
	entry termindex.Entry
	key   normalize.Key
}

// candidates walks the keys of text in order. Depluralized keys are only
// consulted when the exact and normalized keys found nothing.
func (g *Grounder) candidates(text string) []hit {
	var hits []hit
	seen := make(map[int]struct{})
	found := false
	for _, key := range g.normalizer.Keys(text) {
		if key.Kind == models.MatchDepluralized && found {
			break
		}
		entries := g.index.Lookup(key)
		if len(entries) > 0 {
			found = true
		}
		for _, e := range entries {
			if _, dup := seen[e.Ordinal]; dup {
				continue
			}
			seen[e.Ordinal] = struct{}{}
			hits = append(hits, hit{entry: e, key: key})
		}
	}
	return hits
}

// Lookup returns the raw index hits for text in key order, unscored and
// unfiltered. Each indexed record appears at most once.
func (g *Grounder) Lookup(text string) []models.Term {
	hits := g.candidates(text)
	out := make([]models.Term, len(hits))
	for i, h := range hits {
		out[i] = h.entry.Term
	}
	return out
}

// Ground returns the ranked matches for text. Unknown text yields an empty slice.
func (g *Grounder) Ground(text string, opts GroundOptions) []models.ScoredMatch {
	hits := g.candidates(text)
	if len(hits) == 0 {
		return []models.ScoredMatch{}
	}
	normInput := g.normalizer.Normalize(text)

	matches := make([]models.ScoredMatch, 0, len(hits))
	best := make(map[models.EntityKey]int)
	blocked := 0
	for _, h := range hits {
		ek := h.entry.Term.Key()
		if g.blocks(normInput, h, ek) {
			blocked++
			continue
		}
		m := models.ScoredMatch{
			Term:       h.entry.Term,
			Score:      g.scorer.Score(g.scoringContext(text, h.entry.Term, h.key)),
			MatchKind:  h.key.Kind,
			MatchedKey: h.key.Value,
			Ordinal:    h.entry.Ordinal,
		}
		if i, ok := best[ek]; ok {
			if m.Score > matches[i].Score {
				matches[i] = m
			}
			continue
		}
		best[ek] = len(matches)
		matches = append(matches, m)
	}

	priority := opts.Organisms
	if priority == nil {
		priority = g.organisms
	}
	matches = organism.FilterMatches(matches, priority)
	matches = restrictNamespaces(matches, opts.Namespaces)
	g.ranker.Sort(matches)
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	g.logger.Debug("grounded",
		zap.String("text", text),
		zap.Int("hits", len(hits)),
		zap.Int("blocked", blocked),
		zap.Int("matches", len(matches)))
	return matches
}

func (g *Grounder) blocks(normInput string, h hit, ek models.EntityKey) bool {
	if g.stoplist.Blocks(normInput, ek) {
		return true
	}
	return h.key.Kind != models.MatchExact && g.stoplist.Blocks(h.key.Value, ek)
}

func restrictNamespaces(matches []models.ScoredMatch, namespaces []string) []models.ScoredMatch {
	if len(namespaces) == 0 {
		return matches
	}
	allowed := make(map[string]struct{}, len(namespaces))
	for _, ns := range namespaces {
		allowed[ns] = struct{}{}
	}
	out := matches[:0]
	for _, m := range matches {
		if _, ok := allowed[m.Term.Namespace]; ok {
			out = append(out, m)
		}
	}
	return out
}

// GroundBatch grounds texts concurrently with at most concurrency calls in
// flight. Results are in input order.
func (g *Grounder) GroundBatch(ctx context.Context, texts []string, opts GroundOptions, concurrency int) ([][]models.ScoredMatch, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	out := make([][]models.ScoredMatch, len(texts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, text := range texts {
		i, text := i, text
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = g.Ground(text, opts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Explain returns the score breakdown of a match when the scorer supports it.
func (g *Grounder) Explain(text string, m models.ScoredMatch) *ranking.ScoreBreakdown {
	ls, ok := g.scorer.(*ranking.LogisticScorer)
	if !ok {
		return nil
	}
	return ls.Breakdown(g.scoringContext(text, m.Term, normalize.Key{Value: m.MatchedKey, Kind: m.MatchKind}))
}

func (g *Grounder) scoringContext(text string, term models.Term, key normalize.Key) ranking.ScoringContext {
	c := ranking.ScoringContext{Input: text, Term: term, Kind: key.Kind}
	if key.Kind == models.MatchDepluralized {
		c.Singular = g.normalizer.Singularize(text, key.Value)
	}
	return c
}
