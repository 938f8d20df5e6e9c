package disambig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/vector"
	"github.com/hyperjump/termground/pkg/utils"
)

// DefaultTemperature scales cosine similarities before the softmax.
const DefaultTemperature = 0.1

// SimilarityModel is the serialized form of a context similarity model.
type SimilarityModel struct {
	Shortforms  []string `json:"shortforms"`
	Version     string   `json:"version,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	// Profiles holds example contexts per "NS:ID" grounding.
	Profiles map[string][]string `json:"profiles"`
}

// DecodeSimilarityModel reads a SimilarityModel from JSON.
func DecodeSimilarityModel(r io.Reader) (*SimilarityModel, error) {
	var m SimilarityModel
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode similarity model: %v", errs.ErrInvalidModel, err)
	}
	return &m, nil
}

// ContextSimilarity scores senses by the cosine between the embedded context
// and each entity's profile centroid, softmaxed with a temperature.
type ContextSimilarity struct {
	shortforms  []string
	version     string
	temperature float64
	labels      []string
	embedder    embedding.Embedder
	profiles    *vector.MemoryIndex
}

// NewContextSimilarity embeds every profile text and stores one centroid per entity.
func NewContextSimilarity(ctx context.Context, m *SimilarityModel, e embedding.Embedder) (*ContextSimilarity, error) {
	if m == nil || len(m.Shortforms) == 0 {
		return nil, fmt.Errorf("%w: similarity model has no shortforms", errs.ErrInvalidModel)
	}
	if len(m.Profiles) == 0 {
		return nil, fmt.Errorf("%w: similarity model for %v has no profiles", errs.ErrInvalidModel, m.Shortforms)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: similarity model needs an embedder", errs.ErrInvalidConfig)
	}
	temp := m.Temperature
	if temp == 0 {
		temp = DefaultTemperature
	}
	if temp < 0 {
		return nil, fmt.Errorf("%w: temperature must be positive, got %v", errs.ErrInvalidModel, temp)
	}
	idx, err := vector.NewMemoryIndex(e.Dimensions())
	if err != nil {
		return nil, err
	}
	labels := sortedKeys(m.Profiles)
	centroids := make([][]float32, len(labels))
	for i, label := range labels {
		texts := m.Profiles[label]
		if len(texts) == 0 {
			return nil, fmt.Errorf("%w: empty profile for %s", errs.ErrInvalidModel, label)
		}
		vecs, err := e.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed profile %s: %w", label, err)
		}
		centroids[i] = vector.Centroid(vecs)
	}
	if err := idx.Add(ctx, labels, centroids); err != nil {
		return nil, err
	}
	return &ContextSimilarity{
		shortforms:  append([]string(nil), m.Shortforms...),
		version:     m.Version,
		temperature: temp,
		labels:      labels,
		embedder:    e,
		profiles:    idx,
	}, nil
}

// Type returns "gilda".
func (s *ContextSimilarity) Type() string { return models.DisambigGilda }

// Shortforms returns the shortforms this model covers.
func (s *ContextSimilarity) Shortforms() []string { return append([]string(nil), s.shortforms...) }

// Version returns the model version.
func (s *ContextSimilarity) Version() string { return s.version }

// Labels returns the profiled groundings sorted.
func (s *ContextSimilarity) Labels() []string { return append([]string(nil), s.labels...) }

// Predict scores every profiled entity. There is no ungrounded sense.
func (s *ContextSimilarity) Predict(ctx context.Context, _ string, text string) (Prediction, error) {
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Prediction{}, fmt.Errorf("embed context: %w", err)
	}
	query := append([]float32(nil), emb...)
	utils.NormalizeL2(query)
	hits, err := s.profiles.Search(ctx, query, s.profiles.Size())
	if err != nil {
		return Prediction{}, err
	}
	logits := make([]float64, len(hits))
	for i, h := range hits {
		logits[i] = math.Max(-1, math.Min(1, h.Score)) / s.temperature
	}
	probs := softmax(logits)
	pred := Prediction{Scores: make(map[string]float64, len(hits))}
	for i, h := range hits {
		pred.Scores[h.ID] = probs[i]
	}
	return pred, nil
}
