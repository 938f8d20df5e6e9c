package models

import "fmt"

// MatchKind records which normalization path produced a match.
type MatchKind int

const (
	// MatchExact is a hit on the unchanged input text.
	MatchExact MatchKind = iota
	// MatchNormalized is a hit on the case and punctuation folded key.
	MatchNormalized
	// MatchDepluralized is a hit reached only after stripping a plural suffix.
	MatchDepluralized
)

// String returns a string representation of the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchNormalized:
		return "normalized"
	case MatchDepluralized:
		return "depluralized"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind serialize as its name.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *MatchKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "exact":
		*k = MatchExact
	case "normalized":
		*k = MatchNormalized
	case "depluralized":
		*k = MatchDepluralized
	default:
		return fmt.Errorf("unknown match kind %q", b)
	}
	return nil
}

// Disambiguation types and verdicts.
const (
	DisambigAdeft = "adeft"
	DisambigGilda = "gilda"

	VerdictGrounded   = "grounded"
	VerdictUngrounded = "ungrounded"
)

// Disambiguation is a context-based verdict attached to a match.
type Disambiguation struct {
	Type  string  `json:"type"`
	Match string  `json:"match"`
	Score float64 `json:"score"`
}

// ScoredMatch is one ranked grounding candidate.
type ScoredMatch struct {
	Term           Term            `json:"term"`
	Score          float64         `json:"score"`
	MatchKind      MatchKind       `json:"match_kind"`
	MatchedKey     string          `json:"matched_key"`
	Disambiguation *Disambiguation `json:"disambiguation,omitempty"`
	// Ordinal is the insertion position of Term in the index.
	Ordinal int `json:"-"`
}

// Grounding returns the "NS:ID" form of the matched term.
func (m ScoredMatch) Grounding() string {
	return m.Term.Grounding()
}
