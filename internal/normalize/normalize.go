// Package normalize turns surface strings into the lookup keys of the term index.
package normalize

import (
	"strings"
	"unicode"

	"github.com/hyperjump/termground/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is one candidate lookup key for an input string.
type Key struct {
	Value string
	Kind  models.MatchKind
}

// Rule strips Suffix from a normalized key and appends Replace.
// The rule does not apply when the key ends in any of Except.
type Rule struct {
	Suffix  string   `yaml:"suffix" json:"suffix"`
	Replace string   `yaml:"replace" json:"replace"`
	Except  []string `yaml:"except,omitempty" json:"except,omitempty"`
}

// DefaultRules returns the english plural suffix rules.
func DefaultRules() []Rule {
	return []Rule{
		{Suffix: "ies", Replace: "y"},
		{Suffix: "es", Replace: ""},
		{Suffix: "s", Replace: "", Except: []string{"ss"}},
	}
}

// minStem is the shortest key a depluralization rule may produce.
const minStem = 2

var greekReplacer = strings.NewReplacer(
	"α", "alpha", "Α", "alpha",
	"β", "beta", "Β", "beta",
	"γ", "gamma", "Γ", "gamma",
	"δ", "delta", "Δ", "delta",
	"ε", "epsilon", "Ε", "epsilon",
	"ζ", "zeta", "Ζ", "zeta",
	"η", "eta", "Η", "eta",
	"θ", "theta", "Θ", "theta",
	"ι", "iota", "Ι", "iota",
	"κ", "kappa", "Κ", "kappa",
	"λ", "lambda", "Λ", "lambda",
	"μ", "mu", "Μ", "mu", "µ", "mu",
	"ν", "nu", "Ν", "nu",
	"ξ", "xi", "Ξ", "xi",
	"ο", "omicron", "Ο", "omicron",
	"π", "pi", "Π", "pi",
	"ρ", "rho", "Ρ", "rho",
	"σ", "sigma", "ς", "sigma", "Σ", "sigma",
	"τ", "tau", "Τ", "tau",
	"υ", "upsilon", "Υ", "upsilon",
	"φ", "phi", "Φ", "phi",
	"χ", "chi", "Χ", "chi",
	"ψ", "psi", "Ψ", "psi",
	"ω", "omega", "Ω", "omega",
)

var dashReplacer = strings.NewReplacer(
	"‐", "-", "‑", "-", "‒", "-", "–", "-",
	"—", "-", "―", "-", "−", "-", "﹘", "-",
	"﹣", "-", "－", "-",
)

// Normalizer computes index keys. It is immutable and safe for concurrent use.
type Normalizer struct {
	rules []Rule
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRules replaces the depluralization rules. Rules are tried in order.
func WithRules(rules []Rule) Option {
	return func(n *Normalizer) {
		if rules != nil {
			n.rules = append([]Rule(nil), rules...)
		}
	}
}

// New creates a Normalizer with the default plural rules unless overridden.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{rules: DefaultRules()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Rules returns a copy of the configured depluralization rules.
func (n *Normalizer) Rules() []Rule {
	return append([]Rule(nil), n.rules...)
}

// Normalize returns the case and punctuation folded key for text.
// Greek letters are spelled out, accents removed, dashes unified, then
// whitespace, hyphens and underscores dropped.
func (n *Normalizer) Normalize(text string) string {
	s := greekReplacer.Replace(text)
	s = dashReplacer.Replace(s)
	// transform chains keep internal state, so one is built per call
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if IsSeparator(r) {
			return -1
		}
		return r
	}, s)
}

// Depluralize returns the singular candidates of a normalized key, in rule
// order and without duplicates. The key itself is never returned.
func (n *Normalizer) Depluralize(key string) []string {
	var out []string
	seen := map[string]struct{}{key: {}}
	for _, r := range n.rules {
		if r.Suffix == "" || !strings.HasSuffix(key, r.Suffix) || hasAnySuffix(key, r.Except) {
			continue
		}
		stem := key[:len(key)-len(r.Suffix)] + r.Replace
		if len([]rune(stem)) < minStem {
			continue
		}
		if _, ok := seen[stem]; ok {
			continue
		}
		seen[stem] = struct{}{}
		out = append(out, stem)
	}
	return out
}

// Singularize applies to the surface text the rule that turned its
// normalized key into stem, keeping case and punctuation. Text is returned
// unchanged when no rule maps it onto stem.
func (n *Normalizer) Singularize(text, stem string) string {
	key := n.Normalize(text)
	for _, r := range n.rules {
		if r.Suffix == "" || !strings.HasSuffix(key, r.Suffix) || hasAnySuffix(key, r.Except) {
			continue
		}
		if key[:len(key)-len(r.Suffix)]+r.Replace != stem {
			continue
		}
		surface := []rune(strings.TrimRightFunc(text, IsSeparator))
		width := len([]rune(r.Suffix))
		if len(surface) <= width {
			return text
		}
		tail := string(surface[len(surface)-width:])
		if !strings.EqualFold(tail, r.Suffix) {
			return text
		}
		replace := r.Replace
		if tail != strings.ToLower(tail) {
			replace = strings.ToUpper(replace)
		}
		return string(surface[:len(surface)-width]) + replace
	}
	return text
}

// Keys returns the candidate keys for text, most specific first: the
// unchanged text, its normalized form, then depluralized forms. All keys are
// computed; callers decide whether to consult the depluralized ones.
func (n *Normalizer) Keys(text string) []Key {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	keys := []Key{{Value: text, Kind: models.MatchExact}}
	normalized := n.Normalize(text)
	if normalized == "" {
		return keys
	}
	keys = append(keys, Key{Value: normalized, Kind: models.MatchNormalized})
	for _, stem := range n.Depluralize(normalized) {
		keys = append(keys, Key{Value: stem, Kind: models.MatchDepluralized})
	}
	return keys
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if suf != "" && strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// UnifyDashes replaces unicode dash variants with an ASCII hyphen.
func UnifyDashes(s string) string {
	return dashReplacer.Replace(s)
}

// IsSeparator reports whether r is dropped by Normalize as punctuation.
func IsSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_'
}
