// Package disambig annotates grounding candidates of an ambiguous shortform
// with context based verdicts. Two backends exist: a per-shortform acronym
// classifier ("adeft") and an entity context similarity model ("gilda").
package disambig

import (
	"context"
	"math"
	"sort"
)

// UngroundedLabel is the acronym classifier label for "none of the known senses".
const UngroundedLabel = "ungrounded"

// Prediction is a probability per "NS:ID" grounding for one context.
type Prediction struct {
	Scores map[string]float64
	// Ungrounded is the residual probability when HasUngrounded is set.
	Ungrounded    float64
	HasUngrounded bool
}

// Predictor scores the senses of one or more shortforms given surrounding text.
// Implementations are read-only after construction.
type Predictor interface {
	Type() string
	Shortforms() []string
	Predict(ctx context.Context, shortform, text string) (Prediction, error)
}

// ModelInfo describes a registered predictor.
type ModelInfo struct {
	Shortform string   `json:"shortform"`
	Type      string   `json:"type"`
	Version   string   `json:"version,omitempty"`
	Labels    []string `json:"labels"`
}

type describer interface {
	Version() string
	Labels() []string
}

func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
