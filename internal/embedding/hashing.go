package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/termground/pkg/utils"
)

// DefaultDimensions is the width of the hashing embedder.
const DefaultDimensions = 512

// HashingEmbedder is a deterministic bag of words embedder: each lowercased
// word and word bigram is hashed into a signed bucket, then the vector is L2
// normalized. Texts sharing vocabulary get a high cosine similarity.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns an embedder of the given width.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the hashed feature vector of text. Empty text yields a zero vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	words := Words(text)
	for i, w := range words {
		e.add(emb, w, 1)
		if i > 0 {
			e.add(emb, words[i-1]+" "+w, 0.5)
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

func (e *HashingEmbedder) add(emb []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	emb[bucket] += weight
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashingEmbedder.
func (e *HashingEmbedder) Close() error {
	return nil
}
