package models

import (
	"fmt"
	"strings"

	"github.com/hyperjump/termground/internal/errs"
)

const (
	defaultLimit = 10
	maxBatch     = 1000
)

// GroundRequest is a grounding request with optional disambiguation context.
type GroundRequest struct {
	Text         string   `json:"text"`
	Context      string   `json:"context,omitempty"`
	Organisms    []string `json:"organisms,omitempty"`
	Namespaces   []string `json:"namespaces,omitempty"`
	Disambiguate bool     `json:"disambiguate,omitempty"`
	Rerank       bool     `json:"rerank,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// Validate checks the request and fills in a default limit. The ceiling is
// applied by the service from its configuration.
// Disambiguation is enabled whenever context is supplied.
func (r *GroundRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", errs.ErrValidation)
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.Context != "" {
		r.Disambiguate = true
	}
	return nil
}

// BatchGroundRequest grounds several texts with shared options.
type BatchGroundRequest struct {
	Texts      []string `json:"texts"`
	Organisms  []string `json:"organisms,omitempty"`
	Namespaces []string `json:"namespaces,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Validate checks the batch request and fills in defaults.
func (r *BatchGroundRequest) Validate() error {
	if len(r.Texts) == 0 {
		return fmt.Errorf("%w: texts cannot be empty", errs.ErrValidation)
	}
	if len(r.Texts) > maxBatch {
		return fmt.Errorf("%w: at most %d texts per batch", errs.ErrValidation, maxBatch)
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	return nil
}

// LookupRequest asks for raw, unscored index hits.
type LookupRequest struct {
	Text string `json:"text"`
}

// Validate checks the lookup request.
func (r *LookupRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", errs.ErrValidation)
	}
	return nil
}

// DisambiguateRequest annotates an already grounded candidate list.
type DisambiguateRequest struct {
	Shortform string        `json:"shortform"`
	Context   string        `json:"context"`
	Matches   []ScoredMatch `json:"matches,omitempty"`
	Organisms []string      `json:"organisms,omitempty"`
}

// Validate checks the disambiguation request.
func (r *DisambiguateRequest) Validate() error {
	if strings.TrimSpace(r.Shortform) == "" {
		return fmt.Errorf("%w: shortform cannot be empty", errs.ErrValidation)
	}
	return nil
}

// GroundResponse is the response for a grounding request.
type GroundResponse struct {
	Text      string        `json:"text"`
	Matches   []ScoredMatch `json:"matches"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
	// Suggestions holds "did you mean" keys when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
	Snapshot    string   `json:"snapshot,omitempty"`
}
