package grounding

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hyperjump/termground/internal/keyword"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/normalize"
	"github.com/hyperjump/termground/internal/termindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	g := newFixtureGrounder(t)

	entries := g.Lookup("kras")
	require.NotEmpty(t, entries)
	var sawCurated bool
	for _, e := range entries {
		if e.Status == models.StatusCurated {
			sawCurated = true
			assert.Equal(t, "6407", e.ID)
		}
	}
	assert.True(t, sawCurated)
	assert.Len(t, entries, 4)
}

func TestLookup_Counts(t *testing.T) {
	g := newFixtureGrounder(t)
	assert.Len(t, g.Lookup("NPM1"), 1)
	assert.Len(t, g.Lookup("H4"), 5)
	assert.Empty(t, g.Lookup("nonexistent gene"))
}

func TestLookup_Depluralize(t *testing.T) {
	g := newFixtureGrounder(t)
	entries := g.Lookup("RAFs")
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "raf", e.NormText)
	}
}

func TestLookup_KeyOrder(t *testing.T) {
	g := newFixtureGrounder(t)
	entries := g.Lookup("KRAS")
	require.Len(t, entries, 4)
	// exact text hits come before normalized-only hits
	assert.Equal(t, "KRAS", entries[0].Text)
	assert.Equal(t, "KRAS", entries[1].Text)
	assert.Equal(t, "K-ras", entries[2].Text)
}

func TestGround_Scores(t *testing.T) {
	g := newFixtureGrounder(t)

	exact := g.Ground("KRAS", GroundOptions{})
	require.Len(t, exact, 1)
	assert.Equal(t, 1.0, exact[0].Score)
	assert.Equal(t, models.MatchExact, exact[0].MatchKind)

	lower := g.Ground("kras", GroundOptions{})
	require.Len(t, lower, 1)
	assert.Less(t, lower[0].Score, 1.0)

	dashed := g.Ground("k-ras", GroundOptions{})
	require.Len(t, dashed, 1)
	assert.Less(t, dashed[0].Score, 1.0)

	mixed := g.Ground("bRaf", GroundOptions{})
	require.Len(t, mixed, 1)
	assert.Equal(t, "1097", mixed[0].Term.ID)
	assert.Less(t, mixed[0].Score, 1.0)
	assert.Greater(t, mixed[0].Score, 0.9)
}

func TestGround_LiteralNA(t *testing.T) {
	g := newFixtureGrounder(t)
	matches := g.Ground("Na", GroundOptions{})
	require.Len(t, matches, 1)
	assert.Equal(t, "Na", matches[0].Term.Text)
	na := g.Ground("NA", GroundOptions{})
	require.Len(t, na, 1)
	assert.Equal(t, "NA", na[0].Term.Text)
}

func TestGround_Depluralized(t *testing.T) {
	g := newFixtureGrounder(t)
	plural := g.Ground("RAFs", GroundOptions{})
	single := g.Ground("RAF", GroundOptions{})
	require.Len(t, plural, 2)
	require.NotEmpty(t, single)
	for _, m := range plural {
		assert.Equal(t, models.MatchDepluralized, m.MatchKind)
	}
	assert.Equal(t, "FPLX", plural[0].Term.Namespace)
	assert.Less(t, plural[0].Score, single[0].Score)
}

func TestGround_DepluralizedBelowSingularVariant(t *testing.T) {
	n := normalize.New()
	idx, err := termindex.Build([]models.Term{
		t8("KRAF", "HGNC", "9999", "KRAF", models.StatusName, "9606"),
	}, n)
	require.NoError(t, err)
	g := New(idx, n)

	pairs := [][2]string{
		{"k-raf", "k-rafs"},
		{"k-r-af", "k-r-afs"},
		{"k raf", "k rafs"},
		{"Kraf", "Krafs"},
		{"KRAF", "KRAFS"},
	}
	for _, p := range pairs {
		t.Run(p[1], func(t *testing.T) {
			single := g.Ground(p[0], GroundOptions{})
			multi := g.Ground(p[1], GroundOptions{})
			require.Len(t, single, 1)
			require.Len(t, multi, 1)
			assert.NotEqual(t, models.MatchDepluralized, single[0].MatchKind)
			assert.Equal(t, models.MatchDepluralized, multi[0].MatchKind)
			assert.Less(t, multi[0].Score, single[0].Score)

			b := g.Explain(p[1], multi[0])
			require.NotNil(t, b)
			assert.True(t, b.Features.Depluralized)
		})
	}
}

func TestGround_NamespaceTieBreak(t *testing.T) {
	g := newFixtureGrounder(t)
	matches := g.Ground("interferon gamma", GroundOptions{})
	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "HGNC", matches[0].Term.Namespace)

	custom := newFixtureGrounder(t, WithNamespacePriority([]string{"MESH", "HGNC"}))
	assert.Equal(t, "MESH", custom.Ground("interferon-gamma", GroundOptions{})[0].Term.Namespace)
}

func TestGround_Stoplist(t *testing.T) {
	g := newFixtureGrounder(t)
	for _, text := range []string{"WN", "W-N", "wn", "W N"} {
		matches := g.Ground(text, GroundOptions{})
		for _, m := range matches {
			assert.NotEqual(t, "141447", m.Term.ID, text)
		}
		assert.NotEmpty(t, matches, text)
	}
	// raw lookup still reports the record
	var ids []string
	for _, e := range g.Lookup("WN") {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "141447")
}

func TestGround_Organisms(t *testing.T) {
	g := newFixtureGrounder(t)

	human := g.Ground("Raf1", GroundOptions{})
	require.Len(t, human, 1)
	assert.Equal(t, "9606", human[0].Term.Organism)

	mouse := g.Ground("Raf1", GroundOptions{Organisms: []string{"10090", "9606"}})
	require.Len(t, mouse, 1)
	assert.Equal(t, "10090", mouse[0].Term.Organism)

	open := g.Ground("Raf1", GroundOptions{Organisms: []string{}})
	assert.Len(t, open, 3)
}

func TestGround_NamespacesAndLimit(t *testing.T) {
	g := newFixtureGrounder(t)
	only := g.Ground("H4", GroundOptions{Namespaces: []string{"MESH"}})
	require.Len(t, only, 1)
	assert.Equal(t, "MESH", only[0].Term.Namespace)

	limited := g.Ground("H4", GroundOptions{Limit: 2})
	assert.Len(t, limited, 2)
}

func TestGround_NoMatch(t *testing.T) {
	g := newFixtureGrounder(t)
	for _, text := range []string{"", "   ", "zzzzqqq", "---"} {
		matches := g.Ground(text, GroundOptions{})
		assert.NotNil(t, matches, text)
		assert.Empty(t, matches, text)
	}
}

func TestGround_SortedAndIdempotent(t *testing.T) {
	g := newFixtureGrounder(t)
	first := g.Ground("H4", GroundOptions{})
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, g.Ground("H4", GroundOptions{}))
	}
}

func TestGround_DedupesByEntity(t *testing.T) {
	g := newFixtureGrounder(t)
	matches := g.Ground("k-ras", GroundOptions{})
	require.Len(t, matches, 1)
	// the synonym K-ras differs only in case, which beats the dash mismatch against KRAS
	assert.Equal(t, "K-ras", matches[0].Term.Text)
}

func TestGround_Concurrent(t *testing.T) {
	g := newFixtureGrounder(t)
	want := g.Ground("H4", GroundOptions{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, want, g.Ground("H4", GroundOptions{}))
			}
		}()
	}
	wg.Wait()
}

func TestGroundBatch(t *testing.T) {
	g := newFixtureGrounder(t)
	texts := []string{"KRAS", "unknown", "BRAF", "H4"}
	out, err := g.GroundBatch(context.Background(), texts, GroundOptions{}, 2)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "6407", out[0][0].Term.ID)
	assert.Empty(t, out[1])
	assert.Equal(t, "1097", out[2][0].Term.ID)
	assert.Len(t, out[3], 5)
}

func TestGroundBatch_Cancelled(t *testing.T) {
	g := newFixtureGrounder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("gene%d", i)
	}
	_, err := g.GroundBatch(ctx, texts, GroundOptions{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExplain(t *testing.T) {
	g := newFixtureGrounder(t)
	m := g.Ground("kras", GroundOptions{})[0]
	b := g.Explain("kras", m)
	require.NotNil(t, b)
	assert.Equal(t, m.Score, b.FinalScore)
}

func TestSuggest(t *testing.T) {
	g := newFixtureGrounder(t)
	assert.Nil(t, g.Suggest("krsa", 3))

	g = newFixtureGrounder(t, WithSpellChecker(keyword.NewSpellChecker(g.Index())))
	got := g.Suggest("kraz", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "KRAS", got[0])
}
