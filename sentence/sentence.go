package sentence

import (
	"slices"
	"sort"
)

// TokensColumn is the reserved column name for the word tokens of a sentence.
const TokensColumn = "tokens"

// Sentence is a single sentence of a corpus. All per-token slices are aligned
// by position with Tokens.
type Sentence struct {
	Tokens []string

	// Columns holds label and auxiliary columns keyed by name, e.g. "POS".
	Columns map[string][]string

	// Characters and Casing are derived from Tokens by the features package.
	Characters [][]rune
	Casing     []string
}

// New returns a sentence holding the given tokens and no other columns.
func New(tokens ...string) *Sentence {
	return &Sentence{Tokens: tokens}
}

func (s *Sentence) Len() int {
	return len(s.Tokens)
}

// Set stores values under the named column. Setting TokensColumn replaces Tokens.
func (s *Sentence) Set(name string, values []string) {
	if name == TokensColumn {
		s.Tokens = values
		return
	}

	if s.Columns == nil {
		s.Columns = make(map[string][]string)
	}
	s.Columns[name] = values
}

// Append adds a value to the end of the named column.
func (s *Sentence) Append(name, value string) {
	if name == TokensColumn {
		s.Tokens = append(s.Tokens, value)
		return
	}

	if s.Columns == nil {
		s.Columns = make(map[string][]string)
	}
	s.Columns[name] = append(s.Columns[name], value)
}

// Column returns the named column and whether the sentence has it.
func (s *Sentence) Column(name string) ([]string, bool) {
	if name == TokensColumn {
		return s.Tokens, s.Tokens != nil
	}

	values, ok := s.Columns[name]
	return values, ok
}

// ColumnNames returns the names of the non-token columns in sorted order.
func (s *Sentence) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of s.
func (s *Sentence) Clone() *Sentence {
	c := &Sentence{
		Tokens: slices.Clone(s.Tokens),
		Casing: slices.Clone(s.Casing),
	}

	if s.Columns != nil {
		c.Columns = make(map[string][]string, len(s.Columns))
		for k, v := range s.Columns {
			c.Columns[k] = slices.Clone(v)
		}
	}

	if s.Characters != nil {
		c.Characters = make([][]rune, len(s.Characters))
		for i, chars := range s.Characters {
			c.Characters[i] = slices.Clone(chars)
		}
	}

	return c
}
