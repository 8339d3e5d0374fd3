package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ollama/seqprep/embed"
	"github.com/ollama/seqprep/encode"
	"github.com/ollama/seqprep/mapping"
)

type MappingSummary struct {
	Name string
	Size int
}

type SplitSummary struct {
	Dataset   string
	Split     string
	Sentences int
	Tokens    int
	Unknown   int
	Padded    int
}

type EmbeddingSummary struct {
	Rows int
	Dim  int

	// MeanNorm and StdDevNorm describe the L2 norms of the rows, skipping
	// the padding row.
	MeanNorm   float64
	StdDevNorm float64
}

type Summary struct {
	Embeddings EmbeddingSummary
	Mappings   []MappingSummary
	Splits     []SplitSummary
}

// Summarize describes the contents of a.
func Summarize(a *Artifact) Summary {
	var s Summary

	if a.Embeddings != nil {
		s.Embeddings = summarizeEmbeddings(a.Embeddings)
	}

	m := a.Mappings
	if m == nil {
		return s
	}

	for _, mm := range []*mapping.Mapping{m.Tokens, m.Casing, m.Characters} {
		if mm != nil {
			s.Mappings = append(s.Mappings, MappingSummary{mm.Name(), mm.Len()})
		}
	}
	for _, name := range m.ColumnNames() {
		s.Mappings = append(s.Mappings, MappingSummary{name, m.Column(name).Len()})
	}

	if m.Tokens == nil {
		return s
	}

	unknown, _ := m.Tokens.ID(embed.UnknownToken)
	for _, d := range a.Datasets {
		matrices, ok := a.Data[d.Name]
		if !ok {
			continue
		}

		for _, split := range Splits {
			rows, _ := matrices.Split(split)
			s.Splits = append(s.Splits, summarizeSplit(d.Name, split, rows, unknown))
		}
	}

	return s
}

func summarizeEmbeddings(e *embed.Embeddings) EmbeddingSummary {
	s := EmbeddingSummary{Rows: e.Len(), Dim: e.Dim}
	if s.Rows < 2 {
		return s
	}

	norms := make([]float64, 0, s.Rows-1)
	row := make([]float64, e.Dim)
	for i := 1; i < s.Rows; i++ {
		for j, f := range e.Row(i) {
			row[j] = float64(f)
		}
		norms = append(norms, floats.Norm(row, 2))
	}

	if len(norms) == 1 {
		s.MeanNorm = norms[0]
		return s
	}

	s.MeanNorm, s.StdDevNorm = stat.MeanStdDev(norms, nil)
	return s
}

func summarizeSplit(dataset, split string, rows []encode.Row, unknown int) SplitSummary {
	s := SplitSummary{Dataset: dataset, Split: split, Sentences: len(rows)}
	for _, row := range rows {
		for j, id := range row.Tokens {
			if j == 1 && len(row.Tokens) == 2 && row.RawTokens[j] == embed.PaddingToken {
				s.Padded++
				continue
			}

			s.Tokens++
			if id == unknown {
				s.Unknown++
			}
		}
	}
	return s
}
