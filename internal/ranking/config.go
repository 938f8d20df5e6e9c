package ranking

import (
	"fmt"

	"github.com/hyperjump/termground/internal/errs"
)

// ScoringConfig holds the weights of the logistic match scorer.
type ScoringConfig struct {
	Bias float64 `yaml:"bias"` // default: 6.0

	// Penalties subtracted from the logit
	FirstLetterCasePenalty float64 `yaml:"first_letter_case_penalty"` // default: 0.2
	MixedCasePenalty       float64 `yaml:"mixed_case_penalty"`        // default: 0.4
	AllCasePenalty         float64 `yaml:"all_case_penalty"`          // default: 0.6
	PunctuationPenalty     float64 `yaml:"punctuation_penalty"`       // default: 1.0 per mismatch
	FoldPenalty            float64 `yaml:"fold_penalty"`              // default: 1.2
	DepluralPenalty        float64 `yaml:"deplural_penalty"`          // default: 1.5

	// Status weights added to the logit
	NameWeight       float64 `yaml:"name_weight"`        // default: 0
	CuratedWeight    float64 `yaml:"curated_weight"`     // default: 0
	SynonymWeight    float64 `yaml:"synonym_weight"`     // default: -0.5
	FormerNameWeight float64 `yaml:"former_name_weight"` // default: -1.5
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		Bias: 6.0,

		FirstLetterCasePenalty: 0.2,
		MixedCasePenalty:       0.4,
		AllCasePenalty:         0.6,
		PunctuationPenalty:     1.0,
		FoldPenalty:            1.2,
		DepluralPenalty:        1.5,

		NameWeight:       0,
		CuratedWeight:    0,
		SynonymWeight:    -0.5,
		FormerNameWeight: -1.5,
	}
}

// ApplyDefaults fills in zero penalties with defaults. Status weights are
// taken from the defaults only when all four are zero.
func (c *ScoringConfig) ApplyDefaults() {
	defaults := DefaultScoringConfig()

	if c.Bias == 0 {
		c.Bias = defaults.Bias
	}
	if c.FirstLetterCasePenalty == 0 {
		c.FirstLetterCasePenalty = defaults.FirstLetterCasePenalty
	}
	if c.MixedCasePenalty == 0 {
		c.MixedCasePenalty = defaults.MixedCasePenalty
	}
	if c.AllCasePenalty == 0 {
		c.AllCasePenalty = defaults.AllCasePenalty
	}
	if c.PunctuationPenalty == 0 {
		c.PunctuationPenalty = defaults.PunctuationPenalty
	}
	if c.FoldPenalty == 0 {
		c.FoldPenalty = defaults.FoldPenalty
	}
	if c.DepluralPenalty == 0 {
		c.DepluralPenalty = defaults.DepluralPenalty
	}
	if c.NameWeight == 0 && c.CuratedWeight == 0 && c.SynonymWeight == 0 && c.FormerNameWeight == 0 {
		c.NameWeight = defaults.NameWeight
		c.CuratedWeight = defaults.CuratedWeight
		c.SynonymWeight = defaults.SynonymWeight
		c.FormerNameWeight = defaults.FormerNameWeight
	}
}

// Validate rejects weights that break the ranking invariants. Any case
// penalty stays below one punctuation mismatch and below depluralization,
// penalties are positive, and status weights do not increase down the
// name, curated, synonym, former name order.
func (c *ScoringConfig) Validate() error {
	if c.DepluralPenalty <= 0 {
		return fmt.Errorf("%w: deplural penalty must be positive", errs.ErrInvalidConfig)
	}
	if c.PunctuationPenalty <= 0 {
		return fmt.Errorf("%w: punctuation penalty must be positive", errs.ErrInvalidConfig)
	}
	casePenalties := []float64{c.FirstLetterCasePenalty, c.MixedCasePenalty, c.AllCasePenalty}
	for _, p := range casePenalties {
		if p <= 0 {
			return fmt.Errorf("%w: case penalties must be positive", errs.ErrInvalidConfig)
		}
		if p >= c.PunctuationPenalty {
			return fmt.Errorf("%w: case penalty %.3f must be below punctuation penalty %.3f",
				errs.ErrInvalidConfig, p, c.PunctuationPenalty)
		}
		if p >= c.DepluralPenalty {
			return fmt.Errorf("%w: case penalty %.3f must be below deplural penalty %.3f",
				errs.ErrInvalidConfig, p, c.DepluralPenalty)
		}
	}
	if c.FoldPenalty <= 0 {
		return fmt.Errorf("%w: fold penalty must be positive", errs.ErrInvalidConfig)
	}
	if !(c.NameWeight >= c.CuratedWeight && c.CuratedWeight >= c.SynonymWeight && c.SynonymWeight >= c.FormerNameWeight) {
		return fmt.Errorf("%w: status weights must satisfy name >= curated >= synonym >= former_name",
			errs.ErrInvalidConfig)
	}
	return nil
}
