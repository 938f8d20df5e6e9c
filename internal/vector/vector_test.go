package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 0}))
}

func TestCentroid(t *testing.T) {
	c := Centroid([][]float32{{1, 0}, {0, 1}})
	require.Len(t, c, 2)
	assert.InDelta(t, 1.0, L2Norm(c), 1e-6)
	assert.InDelta(t, c[0], c[1], 1e-6)

	assert.Nil(t, Centroid(nil))
	assert.Nil(t, Centroid([][]float32{{1, 0}, {1}}))
}

func TestMemoryIndex(t *testing.T) {
	ctx := context.Background()
	_, err := NewMemoryIndex(0)
	assert.Error(t, err)

	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, []string{"HGNC:17847", "HGNC:7679", "TAIR:A"}, [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}))
	assert.Equal(t, 3, idx.Size())

	res, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "HGNC:17847", res[0].ID)
	assert.Equal(t, "TAIR:A", res[1].ID)

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.Error(t, err)
	assert.Error(t, idx.Add(ctx, []string{"x"}, [][]float32{{1}}))
	assert.Error(t, idx.Add(ctx, []string{"x", "y"}, [][]float32{{1, 0}}))

	require.NoError(t, idx.Remove(ctx, []string{"HGNC:17847"}))
	assert.Equal(t, 2, idx.Size())
	res, _ = idx.Search(ctx, []float32{1, 0}, 10)
	assert.Equal(t, "TAIR:A", res[0].ID)

	none, err := idx.Search(ctx, []float32{1, 0}, 0)
	assert.NoError(t, err)
	assert.Nil(t, none)
	assert.NoError(t, idx.Close())
}
