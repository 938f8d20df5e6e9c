package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/hyperjump/termground/internal/models"
)

// ResultCache stores ranked grounding results.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.ScoredMatch, bool, error)
	Set(ctx context.Context, key string, matches []models.ScoredMatch) error
	Close() error
}

// Key builds a cache key. The snapshot id makes every reload start cold.
// Fields are length prefixed so no separator inside a value can make two
// requests share a key.
func Key(snapshot, text string, organisms, namespaces []string, limit int) string {
	var b strings.Builder
	writeField(&b, snapshot)
	writeField(&b, text)
	writeList(&b, organisms)
	writeList(&b, namespaces)
	b.WriteString(strconv.Itoa(limit))
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

// writeList keeps a nil list distinct from an empty one.
func writeList(b *strings.Builder, items []string) {
	if items == nil {
		b.WriteByte('*')
		return
	}
	b.WriteString(strconv.Itoa(len(items)))
	b.WriteByte('#')
	for _, it := range items {
		writeField(b, it)
	}
}

// MemoryCache is an in-process ResultCache.
type MemoryCache struct {
	lru *LRU[[]models.ScoredMatch]
}

// NewMemoryCache creates a cache of the given capacity.
func NewMemoryCache(capacity int) *MemoryCache {
	return &MemoryCache{lru: NewLRU[[]models.ScoredMatch](capacity)}
}

// Get returns a copy of the cached matches.
func (c *MemoryCache) Get(_ context.Context, key string) ([]models.ScoredMatch, bool, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]models.ScoredMatch{}, v...), true, nil
}

// Set stores a copy of matches.
func (c *MemoryCache) Set(_ context.Context, key string, matches []models.ScoredMatch) error {
	c.lru.Set(key, append([]models.ScoredMatch{}, matches...))
	return nil
}

// Close is a no-op.
func (c *MemoryCache) Close() error {
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]models.ScoredMatch, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, string, []models.ScoredMatch) error { return nil }

func (NopCache) Close() error { return nil }
