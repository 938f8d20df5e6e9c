package grounding

// Suggest returns up to n "did you mean" surface strings for text, using the
// spell checker over the normalized keys of the index. It returns nil when no
// spell checker is configured.
func (g *Grounder) Suggest(text string, n int) []string {
	if g.spell == nil || n <= 0 {
		return nil
	}
	key := g.normalizer.Normalize(text)
	if key == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, s := range g.spell.Suggest(key) {
		entries := g.index.LookupNorm(s.Term)
		if len(entries) == 0 {
			continue
		}
		display := entries[0].Term.Text
		if _, dup := seen[display]; dup {
			continue
		}
		seen[display] = struct{}{}
		out = append(out, display)
		if len(out) == n {
			break
		}
	}
	return out
}
