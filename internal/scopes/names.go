package scopes

// NamesTable is the append-if-absent string table shared by a source map's
// `names` array and the scopes extension's own name/kind/variable/value
// references, per the codec's reuse of that one table for all four. The
// encoder interns into it; the decoder only ever reads it.
type NamesTable struct {
	Names []string
	index map[string]int
}

// NewNamesTable wraps an existing names slice (e.g. a source map's `names`
// field) so the encoder can extend it in place without disturbing indices
// already in use elsewhere in the map.
func NewNamesTable(existing []string) *NamesTable {
	t := &NamesTable{
		Names: append([]string(nil), existing...),
		index: make(map[string]int, len(existing)),
	}
	for i, n := range t.Names {
		if _, ok := t.index[n]; !ok {
			t.index[n] = i
		}
	}
	return t
}

// Intern returns s's index, appending it if it is not already present.
func (t *NamesTable) Intern(s string) int {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.Names)
	t.Names = append(t.Names, s)
	t.index[s] = i
	return i
}

// At returns the name at index i, or false if i is out of range.
func (t *NamesTable) At(i int64) (string, bool) {
	if i < 0 || i >= int64(len(t.Names)) {
		return "", false
	}
	return t.Names[i], true
}

// Len reports the current size of the table.
func (t *NamesTable) Len() int { return len(t.Names) }
