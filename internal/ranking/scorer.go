package ranking

import (
	"math"

	"github.com/hyperjump/termground/internal/models"
)

// LogisticScorer is a small logistic model over match features. Scores are
// normalized so an exact match with the top status weight is exactly 1.0.
type LogisticScorer struct {
	config *ScoringConfig
	norm   float64
}

// NewLogisticScorer creates a scorer. A nil config uses the defaults.
func NewLogisticScorer(config *ScoringConfig) *LogisticScorer {
	if config == nil {
		config = DefaultScoringConfig()
	}
	config.ApplyDefaults()
	s := &LogisticScorer{config: config}
	s.norm = sigmoid(config.Bias + s.maxStatusWeight())
	return s
}

// Name returns the name of the scorer.
func (s *LogisticScorer) Name() string {
	return "logistic"
}

// Score returns the plausibility of ctx in [0,1].
func (s *LogisticScorer) Score(ctx ScoringContext) float64 {
	return s.Breakdown(ctx).FinalScore
}

// Breakdown returns the features and intermediate values behind a score.
func (s *LogisticScorer) Breakdown(ctx ScoringContext) *ScoreBreakdown {
	f := ExtractFeatures(ctx)
	b := &ScoreBreakdown{
		Features:    f,
		StatusScore: s.StatusWeight(f.Status),
		Penalty:     s.penalty(f),
	}
	b.Logit = s.config.Bias + b.StatusScore - b.Penalty
	b.FinalScore = clamp01(sigmoid(b.Logit) / s.norm)
	return b
}

// StatusWeight returns the logit contribution of a status.
func (s *LogisticScorer) StatusWeight(status models.Status) float64 {
	switch status {
	case models.StatusName:
		return s.config.NameWeight
	case models.StatusCurated:
		return s.config.CuratedWeight
	case models.StatusSynonym:
		return s.config.SynonymWeight
	case models.StatusFormerName:
		return s.config.FormerNameWeight
	default:
		return s.config.FormerNameWeight
	}
}

func (s *LogisticScorer) maxStatusWeight() float64 {
	c := s.config
	return math.Max(math.Max(c.NameWeight, c.CuratedWeight), math.Max(c.SynonymWeight, c.FormerNameWeight))
}

func (s *LogisticScorer) penalty(f Features) float64 {
	c := s.config
	p := 0.0
	switch f.Case {
	case CaseFirstLetter:
		p += c.FirstLetterCasePenalty
	case CaseMixed:
		p += c.MixedCasePenalty
	case CaseAll:
		p += c.AllCasePenalty
	}
	p += float64(f.Punctuation) * c.PunctuationPenalty
	if f.Folded {
		p += c.FoldPenalty
	}
	if f.Depluralized {
		p += c.DepluralPenalty
	}
	return p
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
