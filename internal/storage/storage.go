// Package storage persists term resources so a server can start from a
// database instead of reparsing flat files.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/termground/internal/models"
)

// Import records one load of a term resource into the store.
type Import struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Format    string    `json:"format"`
	Terms     int64     `json:"terms"`
	CreatedAt time.Time `json:"created_at"`
}

// TermStore defines term persistence operations.
type TermStore interface {
	// ReplaceTerms atomically swaps the stored term set and records the import.
	ReplaceTerms(ctx context.Context, terms []models.Term, imp Import) error
	// AppendTerms adds terms after the existing ones.
	AppendTerms(ctx context.Context, terms []models.Term) error
	// ListTerms returns terms in insertion order.
	ListTerms(ctx context.Context, offset, limit int) ([]models.Term, error)
	AllTerms(ctx context.Context) ([]models.Term, error)
	TermsByGrounding(ctx context.Context, namespace, id string) ([]models.Term, error)
	CountTerms(ctx context.Context) (int64, error)
	LatestImport(ctx context.Context) (*Import, error)
	Close() error
}
