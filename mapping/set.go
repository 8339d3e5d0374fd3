package mapping

import (
	"log/slog"
	"sort"

	"github.com/ollama/seqprep/sentence"
)

// Outside is the first key of every label mapping. Its id, 0, doubles as the
// padding id for label-like columns.
const Outside = "O"

// Set holds one mapping per feature.
type Set struct {
	Tokens     *Mapping `cbor:"tokens"`
	Casing     *Mapping `cbor:"casing"`
	Characters *Mapping `cbor:"characters"`

	// Columns maps label and auxiliary column names to their mappings.
	Columns map[string]*Mapping `cbor:"columns"`
}

// Column returns the mapping for the named column, or nil.
func (s *Set) Column(name string) *Mapping {
	return s.Columns[name]
}

// ColumnNames returns the names of the column mappings in sorted order.
func (s *Set) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extend registers every value of every non-token column in sentences.
// Missing column mappings are created and seeded with Outside. Values are
// assigned ids in the order they first appear in sentences.
func (s *Set) Extend(sentences []*sentence.Sentence) {
	if s.Columns == nil {
		s.Columns = make(map[string]*Mapping)
	}

	for _, sent := range sentences {
		for _, name := range sent.ColumnNames() {
			m, ok := s.Columns[name]
			if !ok {
				slog.Debug("new column mapping", "column", name)
				m = New(name, Outside)
				s.Columns[name] = m
			}

			for _, v := range sent.Columns[name] {
				m.Add(v)
			}
		}
	}
}

// Freeze freezes every mapping in the set.
func (s *Set) Freeze() {
	for _, m := range []*Mapping{s.Tokens, s.Casing, s.Characters} {
		if m != nil {
			m.Freeze()
		}
	}

	for _, m := range s.Columns {
		m.Freeze()
	}
}
