package grounding

import (
	"testing"

	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/normalize"
	"github.com/hyperjump/termground/internal/termindex"
	"github.com/stretchr/testify/require"
)

func t8(text, ns, id, name string, status models.Status, org string) models.Term {
	return models.Term{Text: text, Namespace: ns, ID: id, EntryName: name, Status: status, Source: "fixture", Organism: org}
}

func fixtureTerms() []models.Term {
	return []models.Term{
		t8("KRAS", "HGNC", "6407", "KRAS", models.StatusName, "9606"),
		t8("K-ras", "HGNC", "6407", "KRAS", models.StatusSynonym, "9606"),
		t8("KRAS", "HGNC", "6407", "KRAS", "assertion", "9606"),
		t8("Kras", "MGI", "96680", "Kras", models.StatusName, "10090"),
		t8("BRAF", "HGNC", "1097", "BRAF", models.StatusName, "9606"),
		t8("RAF", "FPLX", "RAF", "RAF", models.StatusName, ""),
		t8("Raf", "MESH", "D020811", "raf Kinases", models.StatusSynonym, ""),
		t8("NA", "CHEBI", "26708", "sodium atom", models.StatusSynonym, ""),
		t8("Na", "CHEBI", "26708", "sodium atom", models.StatusSynonym, ""),
		t8("NPM1", "HGNC", "7910", "NPM1", models.StatusName, "9606"),
		t8("H4", "HGNC", "12658", "H4C1", models.StatusFormerName, "9606"),
		t8("H4", "HGNC", "4781", "H4C2", models.StatusFormerName, "9606"),
		t8("H4", "HGNC", "4782", "H4C3", models.StatusFormerName, "9606"),
		t8("H4", "FPLX", "Histone_H4", "Histone_H4", models.StatusSynonym, ""),
		t8("H4", "MESH", "D006657", "Histones", models.StatusSynonym, ""),
		t8("interferon gamma", "MESH", "D007371", "Interferon-gamma", models.StatusName, ""),
		t8("interferon gamma", "HGNC", "5438", "IFNG", models.StatusName, "9606"),
		t8("WN", "CHEBI", "141447", "Trp-Asn", models.StatusSynonym, ""),
		t8("WN", "MESH", "D014901", "West Nile virus", models.StatusSynonym, ""),
		t8("RAF1", "HGNC", "9829", "RAF1", models.StatusName, "9606"),
		t8("Raf1", "MGI", "97847", "Raf1", models.StatusName, "10090"),
		t8("Raf1", "RGD", "3531", "Raf1", models.StatusName, "10116"),
	}
}

func stoplistEntries() []normalize.StopEntry {
	return []normalize.StopEntry{{Text: "WN", Namespace: "CHEBI", ID: "141447"}}
}

func newFixtureGrounder(t testing.TB, opts ...Option) *Grounder {
	t.Helper()
	n := normalize.New()
	idx, err := termindex.Build(fixtureTerms(), n)
	require.NoError(t, err)
	opts = append([]Option{WithStoplist(normalize.NewStoplist(n, stoplistEntries()))}, opts...)
	return New(idx, n, opts...)
}
