package resources

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/storage"
)

func sampleTerms() []models.Term {
	return []models.Term{
		{NormText: "kras", Text: "KRAS", Namespace: "HGNC", ID: "6407", EntryName: "KRAS", Status: models.StatusName, Source: "hgnc", Organism: "9606"},
		{NormText: "na", Text: "NA", Namespace: "CHEBI", ID: "CHEBI:26708", EntryName: "sodium atom", Status: models.StatusSynonym, Source: "chebi"},
		{NormText: "none", Text: "None", Namespace: "MESH", ID: "D000001", EntryName: "None", Status: models.StatusName, Source: ""},
	}
}

const tsvBody = "kras\tKRAS\tHGNC\t6407\tKRAS\tname\thgnc\t9606\n" +
	"na\tNA\tCHEBI\tCHEBI:26708\tsodium atom\tsynonym\tchebi\t\n" +
	"none\tNone\tMESH\tD000001\tNone\tname\t\t\n"

func TestReadTSV(t *testing.T) {
	for name, body := range map[string]string{
		"no header":   tsvBody,
		"with header": strings.Join(Columns, "\t") + "\n" + tsvBody,
		"crlf":        strings.ReplaceAll(tsvBody, "\n", "\r\n"),
	} {
		t.Run(name, func(t *testing.T) {
			terms, err := ReadTSV(strings.NewReader(body))
			require.NoError(t, err)
			assert.Equal(t, sampleTerms(), terms)
		})
	}
}

func TestReadTSV_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(tsvBody))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	terms, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), terms)
}

func TestReadTSV_Malformed(t *testing.T) {
	_, err := ReadTSV(strings.NewReader(tsvBody + "x\tX\tHGNC\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedTerm)
	assert.Contains(t, err.Error(), "line 4")

	_, err = ReadTSV(strings.NewReader("x\tX\tHGNC\t1\tX\tbogus\tsrc\t\n"))
	assert.ErrorIs(t, err, errs.ErrMalformedTerm)
}

func TestWriteTSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleTerms()))
	terms, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), terms)

	bad := sampleTerms()[:1]
	bad[0].EntryName = "a\tb"
	assert.ErrorIs(t, WriteTSV(&bytes.Buffer{}, bad), errs.ErrMalformedTerm)
}

func TestXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTerms()))
	terms, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), terms)
}

func TestLoadTerms(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tsv := filepath.Join(dir, "terms.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte(tsvBody), 0644))
	terms, err := LoadTerms(ctx, tsv, "")
	require.NoError(t, err)
	assert.Len(t, terms, 3)

	xlsx := filepath.Join(dir, "terms.xlsx")
	f, err := os.Create(xlsx)
	require.NoError(t, err)
	require.NoError(t, WriteXLSX(f, sampleTerms()))
	require.NoError(t, f.Close())
	terms, err = LoadTerms(ctx, xlsx, "")
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), terms)

	db := filepath.Join(dir, "terms.db")
	store, err := storage.NewSQLiteStorage(db)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceTerms(ctx, sampleTerms(), storage.Import{ID: "x", Source: tsv, Format: FormatTSV}))
	require.NoError(t, store.Close())
	terms, err = LoadTerms(ctx, db, "")
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), terms)

	_, err = LoadTerms(ctx, filepath.Join(dir, "missing.db"), FormatSQLite)
	assert.Error(t, err)
	_, err = LoadTerms(ctx, tsv, "csv")
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]string{
		"grounding_terms.tsv.gz": FormatTSV,
		"terms.TSV":              FormatTSV,
		"terms.xlsx":             FormatXLSX,
		"terms.sqlite":           FormatSQLite,
		"terms.db":               FormatSQLite,
	}
	for path, want := range cases {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := DetectFormat("terms.json")
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestLoadTables(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Empty(t, tables.Stoplist)
	assert.NotEmpty(t, tables.Depluralization)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stoplist:
  - {text: WN, namespace: CHEBI, id: "CHEBI:141447"}
depluralization:
  - {suffix: ies, replace: "y"}
  - {suffix: s, except: [ss, us]}
`), 0644))
	tables, err = LoadTables(path)
	require.NoError(t, err)
	require.Len(t, tables.Stoplist, 1)
	assert.Equal(t, "CHEBI:141447", tables.Stoplist[0].ID)
	require.Len(t, tables.Depluralization, 2)
	assert.Equal(t, []string{"ss", "us"}, tables.Depluralization[1].Except)

	require.NoError(t, os.WriteFile(path, []byte("depluralization:\n  - {replace: x}\n"), 0644))
	_, err = LoadTables(path)
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func writeModel(t *testing.T, dir, kind, name, body string) {
	t.Helper()
	sub := filepath.Join(dir, kind)
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, name), []byte(body), 0644))
}

func TestLoadModels(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeModel(t, dir, AcronymDir, "IR.json", `{"shortforms":["IR"],"version":"2","labels":["HGNC:6091","ungrounded"],
		"grounding_map":{"insulin receptor":"HGNC:6091"},"weights":{"HGNC:6091":{"insulin":2}}}`)
	writeModel(t, dir, SimilarityDir, "NDR1.json", `{"shortforms":["NDR1"],"profiles":{"HGNC:17847":["STK38 kinase"],"HGNC:7679":["NDRG1 hypoxia"]}}`)

	predictors, err := LoadModels(ctx, dir, embedding.NewHashingEmbedder(64), nil)
	require.NoError(t, err)
	require.Len(t, predictors, 2)
	assert.Equal(t, models.DisambigAdeft, predictors[0].Type())
	assert.Equal(t, models.DisambigGilda, predictors[1].Type())

	predictors, err = LoadModels(ctx, dir, nil, nil)
	require.NoError(t, err)
	assert.Len(t, predictors, 1)

	none, err := LoadModels(ctx, filepath.Join(dir, "missing"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	writeModel(t, dir, AcronymDir, "ER.json", `{"shortforms":["ER"],"labels":[]}`)
	_, err = LoadModels(ctx, dir, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidModel)
	assert.Contains(t, err.Error(), "ER.json")
}
