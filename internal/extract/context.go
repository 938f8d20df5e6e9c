package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mention is the byte span of one shortform occurrence in a text.
type Mention struct {
	Start int
	End   int
}

// Mentions returns the case-sensitive, whole-word occurrences of shortform.
func Mentions(text, shortform string) []Mention {
	if shortform == "" {
		return nil
	}
	var out []Mention
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], shortform)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(shortform)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			out = append(out, Mention{Start: start, End: end})
		}
		from = start + 1
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

type span struct{ start, end int }

// words splits text on white space and keeps each word's byte span.
func words(text string) []span {
	var out []span
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(text)})
	}
	return out
}

// Window keeps the words within radius words of each mention of shortform.
// Overlapping windows are merged; separate windows are joined by newlines.
// Without a mention, or with radius <= 0, the whole text is returned.
func Window(text, shortform string, radius int) string {
	mentions := Mentions(text, shortform)
	if radius <= 0 || len(mentions) == 0 {
		return strings.TrimSpace(text)
	}
	ws := words(text)
	var ranges []span // word index ranges, end exclusive
	w := 0
	for _, m := range mentions {
		for w < len(ws) && ws[w].end <= m.Start {
			w++
		}
		lo, hi := w-radius, w+radius+1
		if lo < 0 {
			lo = 0
		}
		if hi > len(ws) {
			hi = len(ws)
		}
		if n := len(ranges); n > 0 && lo <= ranges[n-1].end {
			if hi > ranges[n-1].end {
				ranges[n-1].end = hi
			}
			continue
		}
		ranges = append(ranges, span{lo, hi})
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, text[ws[r.start].start:ws[r.end-1].end])
	}
	return strings.Join(parts, "\n")
}
