package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/termground/internal/errs"
)

type countingEmbedder struct {
	calls  int
	err    error
	closed bool
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, c, texts)
}

func (c *countingEmbedder) Dimensions() int { return 1 }

func (c *countingEmbedder) Close() error {
	c.closed = true
	return nil
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, 4)

	v, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, v)
	_, _ = c.Embed(context.Background(), "abc")
	assert.Equal(t, 1, inner.calls)

	out, err := c.EmbedBatch(context.Background(), []string{"abc", "de"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3}, {2}}, out)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1, c.Dimensions())

	require.NoError(t, c.Close())
	assert.True(t, inner.closed)
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("boom")}
	c := NewCachedEmbedder(inner, 4)
	_, err := c.Embed(context.Background(), "x")
	assert.Error(t, err)
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestNew(t *testing.T) {
	e, err := New(Options{Dimensions: 8})
	require.NoError(t, err)
	assert.IsType(t, &HashingEmbedder{}, e)

	e, err = New(Options{Kind: KindHashing, Dimensions: 8, CacheSize: 10})
	require.NoError(t, err)
	assert.IsType(t, &CachedEmbedder{}, e)
	assert.Equal(t, 8, e.Dimensions())

	_, err = New(Options{Kind: "word2vec"})
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New(Options{Kind: KindONNX})
	assert.Error(t, err)
}
