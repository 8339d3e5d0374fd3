// Package encode converts decorated sentences into rows of integer ids.
package encode

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ollama/seqprep/embed"
	"github.com/ollama/seqprep/features"
	"github.com/ollama/seqprep/freq"
	"github.com/ollama/seqprep/logutil"
	"github.com/ollama/seqprep/mapping"
	"github.com/ollama/seqprep/sentence"
)

// ErrUnmappedValue is returned when a casing or column value has no id.
// Column values must be registered with mapping.Set.Extend before encoding.
var ErrUnmappedValue = errors.New("value not in mapping")

// Row is an encoded sentence. Every feature slice is aligned with Tokens.
type Row struct {
	Tokens     []int            `cbor:"tokens" json:"tokens"`
	RawTokens  []string         `cbor:"raw_tokens" json:"raw_tokens"`
	Characters [][]int          `cbor:"characters,omitempty" json:"characters,omitempty"`
	Casing     []int            `cbor:"casing,omitempty" json:"casing,omitempty"`
	Columns    map[string][]int `cbor:"columns,omitempty" json:"columns,omitempty"`
}

func (r Row) Len() int {
	return len(r.Tokens)
}

type Options struct {
	// PadSingleToken appends a padding step to sentences of exactly one token.
	PadSingleToken bool
}

type Stats struct {
	Sentences int
	Tokens    int
	Unknown   int
	Padded    int

	// Missing counts the lower-cased normalized form of every unknown token.
	Missing *freq.Dist
}

// UnknownRatio returns the fraction of tokens encoded as the unknown token.
func (s Stats) UnknownRatio() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.Unknown) / float64(s.Tokens)
}

// Encode encodes sentences with the mappings in m. Only the features a
// sentence carries are encoded; the caller decorates sentences with
// features.AddCharacters and features.AddCasing beforehand.
func Encode(sentences []*sentence.Sentence, m *mapping.Set, opts Options) ([]Row, Stats, error) {
	stats := Stats{Missing: freq.New()}
	if m.Tokens == nil {
		return nil, stats, errors.New("encode: missing token mapping")
	}

	unknown, ok := m.Tokens.ID(embed.UnknownToken)
	if !ok {
		return nil, stats, fmt.Errorf("encode: token mapping has no %s", embed.UnknownToken)
	}

	padding, ok := m.Tokens.ID(embed.PaddingToken)
	if !ok {
		return nil, stats, fmt.Errorf("encode: token mapping has no %s", embed.PaddingToken)
	}

	rows := make([]Row, 0, len(sentences))
	for i, s := range sentences {
		row := Row{
			Tokens:    make([]int, len(s.Tokens)),
			RawTokens: make([]string, len(s.Tokens)),
		}

		for j, token := range s.Tokens {
			id, ok := lookupToken(m.Tokens, token)
			if !ok {
				id = unknown
				stats.Unknown++
				stats.Missing.Add(embed.Forms(token)[3])
				logutil.Trace("unknown token", "sentence", i, "token", token)
			}

			row.Tokens[j] = id
			row.RawTokens[j] = token
		}
		stats.Tokens += len(s.Tokens)

		if s.Characters != nil && m.Characters != nil {
			row.Characters = encodeCharacters(m.Characters, s.Characters)
		}

		if s.Casing != nil && m.Casing != nil {
			ids, err := lookup(m.Casing, s.Casing)
			if err != nil {
				return nil, stats, fmt.Errorf("sentence %d: %w", i, err)
			}
			row.Casing = ids
		}

		for _, name := range s.ColumnNames() {
			cm := m.Column(name)
			if cm == nil {
				continue
			}

			ids, err := lookup(cm, s.Columns[name])
			if err != nil {
				return nil, stats, fmt.Errorf("sentence %d: %w", i, err)
			}

			if row.Columns == nil {
				row.Columns = make(map[string][]int)
			}
			row.Columns[name] = ids
		}

		if opts.PadSingleToken && len(row.Tokens) == 1 {
			pad(&row, padding, m.Characters)
			stats.Padded++
		}

		rows = append(rows, row)
	}

	stats.Sentences = len(rows)
	if stats.Tokens > 0 {
		slog.Info("Unknown-Tokens", "percent", fmt.Sprintf("%.2f%%", stats.UnknownRatio()*100), "unknown", stats.Unknown, "tokens", stats.Tokens)
	}

	if stats.Padded > 0 {
		slog.Info("padded one-token sentences", "count", stats.Padded)
	}

	return rows, stats, nil
}

// lookupToken resolves token by the first of its embed.Forms in the mapping.
func lookupToken(m *mapping.Mapping, token string) (int, bool) {
	for _, form := range embed.Forms(token) {
		if id, ok := m.ID(form); ok {
			return id, true
		}
	}
	return 0, false
}

func encodeCharacters(m *mapping.Mapping, chars [][]rune) [][]int {
	unknown, _ := m.ID(features.CharacterUnknown)

	ids := make([][]int, len(chars))
	for i, runes := range chars {
		ids[i] = make([]int, len(runes))
		for j, r := range runes {
			id, ok := m.ID(string(r))
			if !ok {
				id = unknown
			}
			ids[i][j] = id
		}
	}

	return ids
}

func lookup(m *mapping.Mapping, values []string) ([]int, error) {
	ids := make([]int, len(values))
	for i, v := range values {
		id, ok := m.ID(v)
		if !ok {
			return nil, fmt.Errorf("%w: column %q value %q", ErrUnmappedValue, m.Name(), v)
		}
		ids[i] = id
	}

	return ids, nil
}

func pad(row *Row, padding int, characters *mapping.Mapping) {
	row.Tokens = append(row.Tokens, padding)
	row.RawTokens = append(row.RawTokens, embed.PaddingToken)

	if row.Characters != nil {
		id, _ := characters.ID(features.CharacterPadding)
		row.Characters = append(row.Characters, []int{id})
	}

	if row.Casing != nil {
		row.Casing = append(row.Casing, 0)
	}

	for name, ids := range row.Columns {
		row.Columns[name] = append(ids, 0)
	}
}

// Decode maps ids back to the keys of m. Ids outside m decode to "".
func Decode(m *mapping.Mapping, ids []int) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i], _ = m.Key(id)
	}
	return keys
}
