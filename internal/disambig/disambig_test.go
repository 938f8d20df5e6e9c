package disambig

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
)

func match(ns, id, text string) models.ScoredMatch {
	return models.ScoredMatch{
		Term:  models.Term{Text: text, NormText: strings.ToLower(text), Namespace: ns, ID: id, EntryName: text, Status: models.StatusSynonym},
		Score: 0.9,
	}
}

func irModel() *AcronymModel {
	return &AcronymModel{
		Shortforms: []string{"IR"},
		Version:    "1.0",
		Labels:     []string{"HGNC:6091", "MESH:D011839", UngroundedLabel},
		GroundingMap: map[string]string{
			"insulin receptor":   "HGNC:6091",
			"ionizing radiation": "MESH:D011839",
			"infrared":           UngroundedLabel,
		},
		Weights: map[string]map[string]float64{
			"HGNC:6091":    {"insulin": 3, "signaling": 1},
			"MESH:D011839": {"radiation": 3},
		},
	}
}

func irMatches() []models.ScoredMatch {
	return []models.ScoredMatch{
		match("HGNC", "6091", "IR"),
		match("MESH", "D011839", "IR"),
		match("CHEBI", "30145", "IR"),
	}
}

// axisEmbedder puts each known keyword on its own axis.
type axisEmbedder struct {
	axes []string
	err  error
}

func (a axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if a.err != nil {
		return nil, a.err
	}
	v := make([]float32, len(a.axes))
	for _, w := range embedding.Words(text) {
		for i, axis := range a.axes {
			if w == axis {
				v[i]++
			}
		}
	}
	return v, nil
}

func (a axisEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := a.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a axisEmbedder) Dimensions() int { return len(a.axes) }
func (a axisEmbedder) Close() error    { return nil }

func ndr1Model() *SimilarityModel {
	return &SimilarityModel{
		Shortforms: []string{"NDR1"},
		Profiles: map[string][]string{
			"HGNC:17847": {"STK38 kinase", "STK38 phosphorylates"},
			"HGNC:7679":  {"NDRG1 hypoxia", "NDRG1 expression"},
		},
	}
}

func newNDR1(t *testing.T, e embedding.Embedder) *ContextSimilarity {
	t.Helper()
	s, err := NewContextSimilarity(context.Background(), ndr1Model(), e)
	require.NoError(t, err)
	return s
}

func TestAcronymClassifier_LongformDefinition(t *testing.T) {
	c, err := NewAcronymClassifier(irModel())
	require.NoError(t, err)
	d := New(NewRegistry(c))

	out := d.Disambiguate(context.Background(), "IR", irMatches(), "Insulin Receptor (IR)")
	require.Len(t, out, 3)
	for _, m := range out {
		require.NotNil(t, m.Disambiguation)
		assert.Equal(t, models.DisambigAdeft, m.Disambiguation.Type)
	}
	assert.Equal(t, models.Disambiguation{Type: "adeft", Match: "grounded", Score: 1.0}, *out[0].Disambiguation)
	assert.Equal(t, models.VerdictGrounded, out[1].Disambiguation.Match)
	assert.Zero(t, out[1].Disambiguation.Score)
	assert.Equal(t, models.VerdictUngrounded, out[2].Disambiguation.Match)
}

func TestAcronymClassifier_PluralAndSpacing(t *testing.T) {
	c, err := NewAcronymClassifier(irModel())
	require.NoError(t, err)
	pred, err := c.Predict(context.Background(), "IR", "exposure to ionizing radiation ( IRs ) in mice")
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.Scores["MESH:D011839"])
	assert.Zero(t, pred.Ungrounded)
}

func TestAcronymClassifier_UngroundedLongform(t *testing.T) {
	c, err := NewAcronymClassifier(irModel())
	require.NoError(t, err)
	pred, err := c.Predict(context.Background(), "IR", "near infrared (IR) imaging")
	require.NoError(t, err)
	assert.True(t, pred.HasUngrounded)
	assert.Equal(t, 1.0, pred.Ungrounded)
	assert.Zero(t, pred.Scores["HGNC:6091"])
}

func TestAcronymClassifier_LinearModel(t *testing.T) {
	c, err := NewAcronymClassifier(irModel())
	require.NoError(t, err)
	pred, err := c.Predict(context.Background(), "IR", "IR after radiation dose")
	require.NoError(t, err)

	assert.Greater(t, pred.Scores["MESH:D011839"], 0.9)
	var total float64
	for _, p := range pred.Scores {
		total += p
	}
	assert.InDelta(t, 1.0, total+pred.Ungrounded, 1e-9)
	assert.InDelta(t, pred.Scores["HGNC:6091"], pred.Ungrounded, 1e-12)
}

func TestNewAcronymClassifier_Invalid(t *testing.T) {
	m := irModel()
	m.GroundingMap["insulin"] = "HGNC:9999"
	_, err := NewAcronymClassifier(m)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)

	m = irModel()
	m.Weights["UP:P06213"] = map[string]float64{"x": 1}
	_, err = NewAcronymClassifier(m)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)

	_, err = NewAcronymClassifier(&AcronymModel{Shortforms: []string{"IR"}})
	assert.ErrorIs(t, err, errs.ErrInvalidModel)
	_, err = NewAcronymClassifier(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)
}

func TestDecodeAcronymModel(t *testing.T) {
	m, err := DecodeAcronymModel(strings.NewReader(`{"shortforms":["IR"],"labels":["HGNC:6091"],"grounding_map":{"insulin receptor":"HGNC:6091"},"weights":{}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"IR"}, m.Shortforms)

	_, err = DecodeAcronymModel(strings.NewReader(`{"shortform":"IR"}`))
	assert.ErrorIs(t, err, errs.ErrInvalidModel)
}

func TestContextSimilarity(t *testing.T) {
	s := newNDR1(t, axisEmbedder{axes: []string{"stk38", "ndrg1", "kinase"}})
	d := New(NewRegistry(s))

	matches := []models.ScoredMatch{
		match("HGNC", "7679", "NDR1"),
		match("HGNC", "17847", "NDR1"),
		match("TAIR", "AT3G20600", "NDR1"),
	}
	out := d.Disambiguate(context.Background(), "NDR1", matches, "STK38")
	require.Len(t, out, 3)
	for _, m := range out {
		require.NotNil(t, m.Disambiguation)
		assert.Equal(t, models.DisambigGilda, m.Disambiguation.Type)
		assert.Equal(t, models.VerdictGrounded, m.Disambiguation.Match)
	}
	assert.Less(t, out[0].Disambiguation.Score, 0.01)
	assert.Greater(t, out[1].Disambiguation.Score, 0.99)
	assert.Zero(t, out[2].Disambiguation.Score)

	assert.Equal(t, "7679", out[0].Term.ID, "order is preserved")
	assert.Nil(t, matches[0].Disambiguation, "input is not modified")
}

func TestContextSimilarity_HashingEmbedder(t *testing.T) {
	s := newNDR1(t, embedding.NewHashingEmbedder(256))
	pred, err := s.Predict(context.Background(), "NDR1", "STK38 kinase")
	require.NoError(t, err)
	assert.False(t, pred.HasUngrounded)
	assert.Greater(t, pred.Scores["HGNC:17847"], pred.Scores["HGNC:7679"])
	assert.InDelta(t, 1.0, pred.Scores["HGNC:17847"]+pred.Scores["HGNC:7679"], 1e-9)
}

func TestNewContextSimilarity_Invalid(t *testing.T) {
	e := axisEmbedder{axes: []string{"a"}}
	_, err := NewContextSimilarity(context.Background(), &SimilarityModel{Shortforms: []string{"X"}}, e)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)

	m := ndr1Model()
	m.Temperature = -1
	_, err = NewContextSimilarity(context.Background(), m, e)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)

	_, err = NewContextSimilarity(context.Background(), ndr1Model(), nil)
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewContextSimilarity(context.Background(), ndr1Model(), axisEmbedder{axes: []string{"a"}, err: errors.New("down")})
	assert.Error(t, err)
}

type failingPredictor struct{ kind string }

func (f failingPredictor) Type() string         { return f.kind }
func (f failingPredictor) Shortforms() []string { return []string{"IR"} }
func (f failingPredictor) Predict(context.Context, string, string) (Prediction, error) {
	return Prediction{}, errors.New("model unavailable")
}

func TestDisambiguate_NoBackend(t *testing.T) {
	d := New(nil)
	assert.False(t, d.Has("IR"))
	out := d.Disambiguate(context.Background(), "IR", irMatches(), "Insulin Receptor (IR)")
	assert.Equal(t, irMatches(), out)
}

func TestDisambiguate_PredictorErrorLeavesUnannotated(t *testing.T) {
	d := New(NewRegistry(failingPredictor{kind: models.DisambigAdeft}))
	out := d.Disambiguate(context.Background(), "IR", irMatches(), "anything")
	for _, m := range out {
		assert.Nil(t, m.Disambiguation)
	}
}

func TestRegistry_AcronymClassifierWins(t *testing.T) {
	c, err := NewAcronymClassifier(irModel())
	require.NoError(t, err)
	gilda := failingPredictor{kind: models.DisambigGilda}

	for _, reg := range []*Registry{NewRegistry(gilda, c), NewRegistry(c, gilda)} {
		p, ok := reg.Get("IR")
		require.True(t, ok)
		assert.Equal(t, models.DisambigAdeft, p.Type())
	}

	reg := NewRegistry(c, newNDR1(t, axisEmbedder{axes: []string{"stk38"}}), nil)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"IR", "NDR1"}, reg.Shortforms())
	infos := reg.Models()
	require.Len(t, infos, 2)
	assert.Equal(t, ModelInfo{Shortform: "IR", Type: "adeft", Version: "1.0", Labels: irModel().Labels}, infos[0])
	assert.Equal(t, []string{"HGNC:17847", "HGNC:7679"}, infos[1].Labels)

	var empty *Registry
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Models())
}

func TestRerank(t *testing.T) {
	in := []models.ScoredMatch{
		match("A", "1", "x"),
		match("B", "2", "x"),
		match("C", "3", "x"),
		match("D", "4", "x"),
	}
	in[1].Disambiguation = &models.Disambiguation{Type: "adeft", Match: "ungrounded", Score: 0.5}
	in[2].Disambiguation = &models.Disambiguation{Type: "adeft", Match: "grounded", Score: 0.2}
	in[3].Disambiguation = &models.Disambiguation{Type: "adeft", Match: "grounded", Score: 0.7}

	out := Rerank(in)
	var ids []string
	for _, m := range out {
		ids = append(ids, m.Term.Namespace)
	}
	assert.Equal(t, []string{"D", "C", "B", "A"}, ids)
	assert.Equal(t, "A", in[0].Term.Namespace)
}
