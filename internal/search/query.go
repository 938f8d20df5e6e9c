package search

import (
	"fmt"
	"strings"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/keyword"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Query is a free-text entity search request.
type Query struct {
	Text      string `json:"q"`
	Limit     int    `json:"limit"`
	Namespace string `json:"namespace,omitempty"`
	// Fuzzy tolerates typos in the keyword leg.
	Fuzzy bool `json:"fuzzy"`
	// Semantic adds the embedding leg when the engine has vectors.
	Semantic bool `json:"semantic"`
}

// Result is one ranked entity.
type Result struct {
	Entity        keyword.EntityDocument `json:"entity"`
	Score         float64                `json:"score"`
	KeywordScore  float64                `json:"keyword_score"`
	SemanticScore float64                `json:"semantic_score"`
	Rank          int                    `json:"rank"`
}

// Response is the outcome of Engine.Search.
type Response struct {
	Query     string   `json:"query"`
	Results   []Result `json:"results"`
	Total     int      `json:"total"`
	QueryTime int64    `json:"query_time_ms"`
}

// ProcessQuery validates q and applies defaults.
func ProcessQuery(q *Query) error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return fmt.Errorf("%w: query text is required", errs.ErrValidation)
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}
