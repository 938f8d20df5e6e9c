package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
)

func openStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "terms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func term(text, ns, id string) models.Term {
	return models.Term{
		NormText: text, Text: text, Namespace: ns, ID: id,
		EntryName: text, Status: models.StatusName, Source: "test",
	}
}

func TestSQLiteStorage_ReplaceAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.LatestImport(ctx)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	first := []models.Term{term("kras", "HGNC", "6407"), term("braf", "HGNC", "1097")}
	require.NoError(t, store.ReplaceTerms(ctx, first, Import{ID: "a", Source: "terms.tsv", Format: "tsv"}))

	second := []models.Term{term("na", "CHEBI", "26708"), term("NA", "CHEBI", "26708"), term("raf", "FPLX", "RAF")}
	second[1].Organism = "9606"
	require.NoError(t, store.ReplaceTerms(ctx, second, Import{ID: "b", Source: "terms.xlsx", Format: "xlsx"}))

	all, err := store.AllTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, all)

	n, err := store.CountTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := store.ListTerms(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "NA", page[0].Text, "literal NA survives a round trip")

	imp, err := store.LatestImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", imp.ID)
	assert.Equal(t, int64(3), imp.Terms)
}

func TestSQLiteStorage_AppendAndByGrounding(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendTerms(ctx, []models.Term{term("KRAS", "HGNC", "6407")}))
	require.NoError(t, store.AppendTerms(ctx, []models.Term{term("K-ras", "HGNC", "6407"), term("BRAF", "HGNC", "1097")}))

	got, err := store.TermsByGrounding(ctx, "HGNC", "6407")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "KRAS", got[0].Text)
	assert.Equal(t, "K-ras", got[1].Text)

	none, err := store.TermsByGrounding(ctx, "HGNC", "1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStorage_RejectsMalformed(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	bad := term("x", "", "1")
	err := store.AppendTerms(ctx, []models.Term{term("ok", "HGNC", "1"), bad})
	assert.ErrorIs(t, err, errs.ErrMalformedTerm)

	n, err := store.CountTerms(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "failed batch is rolled back")
}
