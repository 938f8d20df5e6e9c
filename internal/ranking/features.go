package ranking

import (
	"strings"
	"unicode"

	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/normalize"
)

// ExtractFeatures compares the input with the candidate's surface text. A
// depluralized match compares the singular input, so it carries every
// penalty of the equivalent singular match plus the depluralization flag.
func ExtractFeatures(ctx ScoringContext) Features {
	f := Features{Status: ctx.Term.Status}
	input := ctx.Input
	if ctx.Kind == models.MatchDepluralized {
		f.Depluralized = true
		if ctx.Singular != "" {
			input = ctx.Singular
		}
	}
	in := normalize.UnifyDashes(input)
	text := normalize.UnifyDashes(ctx.Term.Text)
	if in == text {
		f.Exact = !f.Depluralized
		return f
	}
	f.Punctuation = punctuationMismatches(in, text)
	a, b := stripSeparators(in), stripSeparators(text)
	switch {
	case a == b:
	case strings.EqualFold(a, b):
		f.Case = classifyCase(a, b)
	default:
		f.Folded = true
	}
	return f
}

// separators records each separator rune by the number of
// non-separator runes that precede it.
func separators(s string) map[int]rune {
	out := make(map[int]rune)
	pos := 0
	for _, r := range s {
		if normalize.IsSeparator(r) {
			if _, ok := out[pos]; !ok {
				out[pos] = r
			}
			continue
		}
		pos++
	}
	return out
}

// punctuationMismatches counts separators present on one side only, plus
// separators that differ in kind at the same position.
func punctuationMismatches(a, b string) int {
	sa, sb := separators(a), separators(b)
	n := 0
	for pos, ra := range sa {
		rb, ok := sb[pos]
		if !ok || ra != rb {
			n++
		}
	}
	for pos := range sb {
		if _, ok := sa[pos]; !ok {
			n++
		}
	}
	return n
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if normalize.IsSeparator(r) {
			return -1
		}
		return r
	}, s)
}

// classifyCase assumes a and b are equal under case folding.
func classifyCase(a, b string) CaseMismatch {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return CaseMixed
	}
	letters, diff, firstDiff := 0, 0, -1
	for i := range ra {
		if unicode.IsLetter(ra[i]) {
			letters++
		}
		if ra[i] != rb[i] {
			diff++
			if firstDiff < 0 {
				firstDiff = i
			}
		}
	}
	switch {
	case diff == 0:
		return CaseNone
	case diff == 1 && firstDiff == 0:
		return CaseFirstLetter
	case diff == letters:
		return CaseAll
	default:
		return CaseMixed
	}
}
