package termindex

// GetAllTerms returns every normalized key. It lets the index back a
// keyword.SpellChecker.
func (x *TermIndex) GetAllTerms() ([]string, error) {
	return x.Keys(), nil
}

// GetTermFrequency returns how many terms share the key.
func (x *TermIndex) GetTermFrequency(term string) (int, error) {
	return len(x.byNorm[term]), nil
}

// ContainsTerm reports whether the key is present.
func (x *TermIndex) ContainsTerm(term string) (bool, error) {
	return x.Has(term), nil
}
