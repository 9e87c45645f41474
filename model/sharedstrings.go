package model

// SharedStrings is the workbook-level pool of deduplicated text payloads.
// Each distinct string maps to its first-insertion index; interning is
// idempotent (spec.md §8: two Add calls with equal strings return the same
// index and the table grows by exactly one across both calls).
type SharedStrings struct {
	values []string
	index  map[string]int
}

// NewSharedStrings returns an empty table.
func NewSharedStrings() *SharedStrings {
	return &SharedStrings{index: make(map[string]int)}
}

// Add interns s, returning its index. If s was already present, the
// existing index is returned and the table is unchanged.
func (s *SharedStrings) Add(value string) int {
	if idx, ok := s.index[value]; ok {
		return idx
	}
	idx := len(s.values)
	s.values = append(s.values, value)
	s.index[value] = idx
	return idx
}

// Len returns the number of distinct strings interned so far.
func (s *SharedStrings) Len() int { return len(s.values) }

// AppendRaw appends value at the next positional index without consulting
// the dedup map, for use by sharedstringsxml.Decode reconstructing a table
// from an on-disk <sst> element: file position defines the index cells
// reference via t="s", so a hand-edited file with a duplicate <si> entry
// must not collapse two on-disk slots into one index.
func (s *SharedStrings) AppendRaw(value string) int {
	idx := len(s.values)
	s.values = append(s.values, value)
	if _, exists := s.index[value]; !exists {
		s.index[value] = idx
	}
	return idx
}

// At returns the string at idx, or "" with ok=false if idx is out of range.
// Used by readers reconstructing Text cells from a shared-string reference.
func (s *SharedStrings) At(idx int) (string, bool) {
	if idx < 0 || idx >= len(s.values) {
		return "", false
	}
	return s.values[idx], true
}

// All returns the interned strings in insertion order. The returned slice
// must not be mutated by the caller.
func (s *SharedStrings) All() []string {
	return s.values
}

// Clone returns a deep copy of the table.
func (s *SharedStrings) Clone() *SharedStrings {
	c := &SharedStrings{
		values: append([]string(nil), s.values...),
		index:  make(map[string]int, len(s.index)),
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}
