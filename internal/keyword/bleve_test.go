package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/termground/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entityTerms() []models.Term {
	return []models.Term{
		{Text: "INSR", Namespace: "HGNC", ID: "6091", EntryName: "insulin receptor", Status: models.StatusName, Organism: "9606"},
		{Text: "IR", Namespace: "HGNC", ID: "6091", EntryName: "insulin receptor", Status: models.StatusSynonym, Organism: "9606"},
		{Text: "Infrared Rays", Namespace: "MESH", ID: "D007259", EntryName: "Infrared Rays", Status: models.StatusName},
		{Text: "IFNG", Namespace: "HGNC", ID: "5438", EntryName: "interferon gamma", Status: models.StatusName, Organism: "9606"},
	}
}

func newMemIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.IndexAll(context.Background(), DocumentsFromTerms(entityTerms())))
	return idx
}

func TestDocumentsFromTerms(t *testing.T) {
	docs := DocumentsFromTerms(entityTerms())
	require.Len(t, docs, 3)
	assert.Equal(t, "HGNC:6091", docs[0].ID)
	assert.Equal(t, "insulin receptor", docs[0].Name)
	assert.Equal(t, "INSR | IR", docs[0].Synonyms)
	assert.Equal(t, "MESH:D007259", docs[1].ID)
}

func TestBleveIndex_SearchByName(t *testing.T) {
	idx := newMemIndex(t)
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	results, err := idx.Search(context.Background(), "insulin receptor", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "HGNC:6091", results[0].ID)
}

func TestBleveIndex_SearchBySynonym(t *testing.T) {
	idx := newMemIndex(t)
	results, err := idx.Search(context.Background(), "ifng", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "HGNC:5438", results[0].ID)
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newMemIndex(t)
	results, err := idx.Search(context.Background(), "insulni", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search(context.Background(), "insulni", 5, &SearchOptions{FuzzyEnabled: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "HGNC:6091", results[0].ID)
}

func TestBleveIndex_NamespaceFilter(t *testing.T) {
	idx := newMemIndex(t)
	results, err := idx.Search(context.Background(), "infrared insulin", 5, &SearchOptions{Namespace: "MESH"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MESH:D007259", results[0].ID)
}

func TestBleveIndex_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.bleve")
	idx, err := NewBleveIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.IndexAll(context.Background(), DocumentsFromTerms(entityTerms())))
	require.NoError(t, idx.Close())

	reopened, err := NewBleveIndex(path)
	require.NoError(t, err)
	defer reopened.Close()
	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
