// Package models defines core data structures for terms, matches, and grounding requests.
package models

import (
	"fmt"

	"github.com/hyperjump/termground/internal/errs"
)

// Status is the provenance category of a term.
type Status string

const (
	StatusName       Status = "name"
	StatusSynonym    Status = "synonym"
	StatusCurated    Status = "curated"
	StatusFormerName Status = "former_name"
)

// ParseStatus maps a status string, including legacy aliases, to a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "name":
		return StatusName, true
	case "synonym":
		return StatusSynonym, true
	case "curated", "assertion":
		return StatusCurated, true
	case "former_name", "previous":
		return StatusFormerName, true
	default:
		return "", false
	}
}

// Term is one lexical form to identifier mapping from a reference resource.
type Term struct {
	NormText  string `json:"norm_text" db:"norm_text"`
	Text      string `json:"text" db:"text"`
	Namespace string `json:"db" db:"db"`
	ID        string `json:"id" db:"id"`
	EntryName string `json:"entry_name" db:"entry_name"`
	Status    Status `json:"status" db:"status"`
	Source    string `json:"source" db:"source"`
	// Organism is a taxonomy code; empty for species-agnostic terms.
	Organism string `json:"organism,omitempty" db:"organism"`
}

// Grounding returns the "NS:ID" form of the term's identifier.
func (t Term) Grounding() string {
	return t.Namespace + ":" + t.ID
}

// Key identifies the entity a term maps to.
func (t Term) Key() EntityKey {
	return EntityKey{Namespace: t.Namespace, ID: t.ID}
}

// Validate reports the first missing required field.
func (t Term) Validate() error {
	switch {
	case t.Text == "":
		return fmt.Errorf("%w: missing text", errs.ErrMalformedTerm)
	case t.Namespace == "":
		return fmt.Errorf("%w: missing namespace for %q", errs.ErrMalformedTerm, t.Text)
	case t.ID == "":
		return fmt.Errorf("%w: missing id for %q", errs.ErrMalformedTerm, t.Text)
	case t.EntryName == "":
		return fmt.Errorf("%w: missing entry name for %s", errs.ErrMalformedTerm, t.Grounding())
	case t.Status == "":
		return fmt.Errorf("%w: missing status for %s", errs.ErrMalformedTerm, t.Grounding())
	}
	if _, ok := ParseStatus(string(t.Status)); !ok {
		return fmt.Errorf("%w: unknown status %q for %s", errs.ErrMalformedTerm, t.Status, t.Grounding())
	}
	return nil
}

// String renders the term the way the CLI prints it.
func (t Term) String() string {
	org := t.Organism
	if org == "" {
		org = "-"
	}
	return fmt.Sprintf("%s (%s, %s, %s, %s)", t.Text, t.Grounding(), t.EntryName, t.Status, org)
}

// EntityKey is a (namespace, id) pair.
type EntityKey struct {
	Namespace string
	ID        string
}

func (k EntityKey) String() string {
	return k.Namespace + ":" + k.ID
}
