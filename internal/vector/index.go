// Package vector stores entity embeddings and ranks them by similarity.
package vector

import "context"

// VectorIndex holds ID-keyed vectors for similarity search.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Size() int
	Close() error
}

// VectorResult is a single search hit. ID is an entity grounding such as "HGNC:6407".
type VectorResult struct {
	ID    string
	Score float64 // inner product, equal to cosine for unit vectors
}
