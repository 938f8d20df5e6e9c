package disambig

import (
	"context"
	"sort"

	"github.com/hyperjump/termground/internal/metrics"
	"github.com/hyperjump/termground/internal/models"
	"go.uber.org/zap"
)

// Disambiguator dispatches to the predictor registered for a shortform.
type Disambiguator struct {
	registry *Registry
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Disambiguator.
type Option func(*Disambiguator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Disambiguator) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records predictions and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Disambiguator) {
		d.metrics = m
	}
}

// New creates a Disambiguator over reg. A nil registry annotates nothing.
func New(reg *Registry, opts ...Option) *Disambiguator {
	d := &Disambiguator{registry: reg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the predictor registry.
func (d *Disambiguator) Registry() *Registry {
	return d.registry
}

// Has reports whether a predictor covers shortform.
func (d *Disambiguator) Has(shortform string) bool {
	_, ok := d.registry.Get(shortform)
	return ok
}

// Disambiguate returns a copy of matches, same order, annotated with the
// registered predictor's verdict for text. Without a predictor, or when it
// fails, the copy is returned unannotated.
func (d *Disambiguator) Disambiguate(ctx context.Context, shortform string, matches []models.ScoredMatch, text string) []models.ScoredMatch {
	out := make([]models.ScoredMatch, len(matches))
	copy(out, matches)
	p, ok := d.registry.Get(shortform)
	if !ok || len(out) == 0 {
		return out
	}
	pred, err := p.Predict(ctx, shortform, text)
	if err != nil {
		d.logger.Warn("disambiguation failed",
			zap.String("shortform", shortform),
			zap.String("type", p.Type()),
			zap.Error(err))
		d.metrics.DisambiguationFailed(p.Type())
		return out
	}
	d.metrics.Disambiguated(p.Type())
	for i := range out {
		out[i].Disambiguation = annotate(p.Type(), pred, out[i].Grounding())
	}
	return out
}

func annotate(kind string, pred Prediction, grounding string) *models.Disambiguation {
	score, ok := pred.Scores[grounding]
	if !ok && pred.HasUngrounded {
		return &models.Disambiguation{Type: kind, Match: models.VerdictUngrounded, Score: pred.Ungrounded}
	}
	return &models.Disambiguation{Type: kind, Match: models.VerdictGrounded, Score: score}
}

// Rerank returns a copy of matches ordered by annotation: grounded verdicts
// first by descending score, then ungrounded ones, then unannotated matches.
// The sort is stable, so equal keys keep their grounding order.
func Rerank(matches []models.ScoredMatch) []models.ScoredMatch {
	out := make([]models.ScoredMatch, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := rerankGroup(out[i]), rerankGroup(out[j])
		if gi != gj {
			return gi < gj
		}
		if gi == 2 {
			return false
		}
		return out[i].Disambiguation.Score > out[j].Disambiguation.Score
	})
	return out
}

func rerankGroup(m models.ScoredMatch) int {
	switch {
	case m.Disambiguation == nil:
		return 2
	case m.Disambiguation.Match == models.VerdictGrounded:
		return 0
	default:
		return 1
	}
}
