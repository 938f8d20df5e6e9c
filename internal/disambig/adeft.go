package disambig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
)

// AcronymModel is the serialized form of an acronym classifier.
type AcronymModel struct {
	Shortforms []string `json:"shortforms"`
	Version    string   `json:"version,omitempty"`
	// Labels are groundings ("NS:ID") plus optionally UngroundedLabel.
	Labels []string `json:"labels"`
	// GroundingMap maps defining longforms to labels.
	GroundingMap map[string]string `json:"grounding_map"`
	// Weights holds a token weight vector per label.
	Weights map[string]map[string]float64 `json:"weights"`
	Bias    map[string]float64            `json:"bias,omitempty"`
}

// DecodeAcronymModel reads an AcronymModel from JSON.
func DecodeAcronymModel(r io.Reader) (*AcronymModel, error) {
	var m AcronymModel
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode acronym model: %v", errs.ErrInvalidModel, err)
	}
	return &m, nil
}

type longform struct {
	words []string
	label string
}

// AcronymClassifier predicts the sense of a shortform from its context. A
// defining pattern such as "insulin receptor (IR)" settles the sense outright;
// otherwise a linear model over context tokens is softmaxed across labels.
type AcronymClassifier struct {
	shortforms []string
	version    string
	labels     []string
	weights    []map[string]float64
	bias       []float64
	longforms  []longform
	patterns   map[string]*regexp.Regexp
}

// NewAcronymClassifier validates m and prepares its recognizer.
func NewAcronymClassifier(m *AcronymModel) (*AcronymClassifier, error) {
	if m == nil || len(m.Shortforms) == 0 {
		return nil, fmt.Errorf("%w: acronym model has no shortforms", errs.ErrInvalidModel)
	}
	if len(m.Labels) == 0 {
		return nil, fmt.Errorf("%w: acronym model for %v has no labels", errs.ErrInvalidModel, m.Shortforms)
	}
	c := &AcronymClassifier{
		shortforms: append([]string(nil), m.Shortforms...),
		version:    m.Version,
		labels:     append([]string(nil), m.Labels...),
		patterns:   make(map[string]*regexp.Regexp, len(m.Shortforms)),
	}
	known := make(map[string]bool, len(m.Labels))
	for _, label := range m.Labels {
		if known[label] {
			return nil, fmt.Errorf("%w: duplicate label %q", errs.ErrInvalidModel, label)
		}
		known[label] = true
		c.weights = append(c.weights, m.Weights[label])
		c.bias = append(c.bias, m.Bias[label])
	}
	for label := range m.Weights {
		if !known[label] {
			return nil, fmt.Errorf("%w: weights for unknown label %q", errs.ErrInvalidModel, label)
		}
	}
	for _, lf := range sortedKeys(m.GroundingMap) {
		label := m.GroundingMap[lf]
		if !known[label] {
			return nil, fmt.Errorf("%w: longform %q maps to unknown label %q", errs.ErrInvalidModel, lf, label)
		}
		words := embedding.Words(lf)
		if len(words) == 0 {
			continue
		}
		c.longforms = append(c.longforms, longform{words: words, label: label})
	}
	// Longest longform first so "insulin like growth factor" beats "growth factor".
	sort.SliceStable(c.longforms, func(i, j int) bool { return len(c.longforms[i].words) > len(c.longforms[j].words) })
	for _, sf := range m.Shortforms {
		c.patterns[sf] = regexp.MustCompile(`\(\s*` + regexp.QuoteMeta(sf) + `s?\s*\)`)
	}
	return c, nil
}

// Type returns "adeft".
func (c *AcronymClassifier) Type() string { return models.DisambigAdeft }

// Shortforms returns the shortforms this classifier covers.
func (c *AcronymClassifier) Shortforms() []string { return append([]string(nil), c.shortforms...) }

// Version returns the model version.
func (c *AcronymClassifier) Version() string { return c.version }

// Labels returns the label set in model order.
func (c *AcronymClassifier) Labels() []string { return append([]string(nil), c.labels...) }

// Predict returns a distribution over the labels for text.
func (c *AcronymClassifier) Predict(ctx context.Context, shortform, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	probs := c.recognize(shortform, text)
	if probs == nil {
		probs = c.classify(text)
	}
	pred := Prediction{Scores: make(map[string]float64, len(c.labels)), HasUngrounded: true}
	for i, label := range c.labels {
		if label == UngroundedLabel {
			pred.Ungrounded = probs[i]
			continue
		}
		pred.Scores[label] = probs[i]
	}
	return pred, nil
}

// recognize looks for "<longform> (<shortform>)" definitions. Recognized
// labels share probability mass equally; nil means nothing was recognized.
func (c *AcronymClassifier) recognize(shortform, text string) []float64 {
	pattern, ok := c.patterns[shortform]
	if !ok {
		return nil
	}
	found := make(map[string]bool)
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		prefix := embedding.Words(text[:loc[0]])
		for _, lf := range c.longforms {
			if hasSuffix(prefix, lf.words) {
				found[lf.label] = true
				break
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	probs := make([]float64, len(c.labels))
	for i, label := range c.labels {
		if found[label] {
			probs[i] = 1 / float64(len(found))
		}
	}
	return probs
}

func (c *AcronymClassifier) classify(text string) []float64 {
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range embedding.Words(text) {
		if !seen[w] {
			seen[w] = true
			tokens = append(tokens, w)
		}
	}
	logits := make([]float64, len(c.labels))
	for i := range c.labels {
		logits[i] = c.bias[i]
		for _, tok := range tokens {
			logits[i] += c.weights[i][tok]
		}
	}
	return softmax(logits)
}

func hasSuffix(words, suffix []string) bool {
	if len(suffix) > len(words) {
		return false
	}
	tail := words[len(words)-len(suffix):]
	return strings.Join(tail, " ") == strings.Join(suffix, " ")
}
