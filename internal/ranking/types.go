// Package ranking scores grounding candidates and orders them deterministically.
package ranking

import "github.com/hyperjump/termground/internal/models"

// CaseMismatch classifies how an input differs from a term in letter case.
type CaseMismatch int

const (
	// CaseNone means the letters match exactly.
	CaseNone CaseMismatch = iota
	// CaseFirstLetter means only the first letter differs in case.
	CaseFirstLetter
	// CaseMixed means some but not all letters differ in case.
	CaseMixed
	// CaseAll means one side is entirely lower case and the other is not.
	CaseAll
)

// String returns a string representation of the case mismatch.
func (c CaseMismatch) String() string {
	switch c {
	case CaseNone:
		return "none"
	case CaseFirstLetter:
		return "first_letter"
	case CaseMixed:
		return "mixed"
	case CaseAll:
		return "all"
	default:
		return "unknown"
	}
}

// ScoringContext is the (input text, candidate term, matched key kind) triple.
// Singular is the input with its plural suffix stripped; it is only read for
// depluralized matches.
type ScoringContext struct {
	Input    string
	Singular string
	Term     models.Term
	Kind     models.MatchKind
}

// Features are the match quality signals extracted from a ScoringContext.
type Features struct {
	Exact        bool          `json:"exact"`
	Case         CaseMismatch  `json:"case"`
	Punctuation  int           `json:"punctuation"`
	Folded       bool          `json:"folded"`
	Depluralized bool          `json:"depluralized"`
	Status       models.Status `json:"status"`
}

// Scorer assigns a plausibility in [0,1] to a candidate.
type Scorer interface {
	// Score must be deterministic for identical contexts.
	Score(ctx ScoringContext) float64
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}

// ScoreBreakdown provides detailed scoring information for debugging.
type ScoreBreakdown struct {
	Features    Features `json:"features"`
	StatusScore float64  `json:"status_weight"`
	Penalty     float64  `json:"penalty"`
	Logit       float64  `json:"logit"`
	FinalScore  float64  `json:"final_score"`
}
