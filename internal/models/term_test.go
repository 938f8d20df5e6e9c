package models

import (
	"testing"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/stretchr/testify/assert"
)

func validTerm() Term {
	return Term{
		NormText:  "kras",
		Text:      "KRAS",
		Namespace: "HGNC",
		ID:        "6407",
		EntryName: "KRAS",
		Status:    StatusName,
		Source:    "hgnc",
		Organism:  "9606",
	}
}

func TestTerm_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Term)
		ok     bool
	}{
		{"valid", func(*Term) {}, true},
		{"agnostic organism", func(t *Term) { t.Organism = "" }, true},
		{"legacy status alias", func(t *Term) { t.Status = "assertion" }, true},
		{"missing text", func(t *Term) { t.Text = "" }, false},
		{"missing namespace", func(t *Term) { t.Namespace = "" }, false},
		{"missing id", func(t *Term) { t.ID = "" }, false},
		{"missing entry name", func(t *Term) { t.EntryName = "" }, false},
		{"missing status", func(t *Term) { t.Status = "" }, false},
		{"unknown status", func(t *Term) { t.Status = "alias" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := validTerm()
			tt.mutate(&term)
			err := term.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errs.IsMalformedTerm(err), "got %v", err)
			}
		})
	}
}

func TestTerm_LiteralNA(t *testing.T) {
	term := validTerm()
	term.Text = "NA"
	term.NormText = "na"
	assert.NoError(t, term.Validate())
	assert.Equal(t, "HGNC:6407", term.Grounding())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("previous")
	assert.True(t, ok)
	assert.Equal(t, StatusFormerName, s)
	_, ok = ParseStatus("nope")
	assert.False(t, ok)
}
