package ranking

import (
	"math"
	"sort"

	"github.com/hyperjump/termground/internal/models"
)

// DefaultNamespacePriority prefers family and gene nomenclature authorities
// over secondary cross references.
var DefaultNamespacePriority = []string{"FPLX", "HGNC", "UP", "CHEBI", "GO", "MESH", "DOID", "HP", "EFO"}

// ScoreEpsilon is the resolution below which two scores count as tied.
const ScoreEpsilon = 1e-9

// NamespacePriority ranks namespaces; unlisted namespaces rank after all listed ones.
type NamespacePriority struct {
	order []string
	rank  map[string]int
}

// NewNamespacePriority builds a rank table. A nil order uses DefaultNamespacePriority.
func NewNamespacePriority(order []string) *NamespacePriority {
	if order == nil {
		order = DefaultNamespacePriority
	}
	p := &NamespacePriority{rank: make(map[string]int, len(order))}
	for _, ns := range order {
		if _, dup := p.rank[ns]; dup {
			continue
		}
		p.rank[ns] = len(p.order)
		p.order = append(p.order, ns)
	}
	return p
}

// Rank returns the position of ns, lower is preferred.
func (p *NamespacePriority) Rank(ns string) int {
	if r, ok := p.rank[ns]; ok {
		return r
	}
	return len(p.order)
}

// Order returns a copy of the configured order.
func (p *NamespacePriority) Order() []string {
	return append([]string(nil), p.order...)
}

// Ranker orders scored matches by score, then namespace rank, then insertion order.
type Ranker struct {
	priority *NamespacePriority
}

// NewRanker creates a Ranker. A nil priority uses the default order.
func NewRanker(priority *NamespacePriority) *Ranker {
	if priority == nil {
		priority = NewNamespacePriority(nil)
	}
	return &Ranker{priority: priority}
}

// Priority returns the namespace priority used by the ranker.
func (r *Ranker) Priority() *NamespacePriority {
	return r.priority
}

// Less reports whether a sorts before b.
func (r *Ranker) Less(a, b models.ScoredMatch) bool {
	qa, qb := quantize(a.Score), quantize(b.Score)
	if qa != qb {
		return qa > qb
	}
	ra, rb := r.priority.Rank(a.Term.Namespace), r.priority.Rank(b.Term.Namespace)
	if ra != rb {
		return ra < rb
	}
	return a.Ordinal < b.Ordinal
}

// Sort orders matches in place.
func (r *Ranker) Sort(matches []models.ScoredMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return r.Less(matches[i], matches[j])
	})
}

// quantize maps scores onto an epsilon grid so ties compare transitively.
func quantize(score float64) int64 {
	return int64(math.Round(score / ScoreEpsilon))
}
