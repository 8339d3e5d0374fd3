// Package dataset turns column-formatted corpora and a pretrained embedding
// file into a cached artifact of mappings, embeddings and encoded rows.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ollama/seqprep/conll"
	"github.com/ollama/seqprep/sentence"
)

var ErrInvalidDataset = errors.New("invalid dataset")

// Splits are the corpus files read for every dataset, in order.
var Splits = [...]string{"train", "dev", "test"}

// Dataset describes one corpus under the data directory. Its files are
// <DataDir>/<Name>/{train,dev,test}.txt.
type Dataset struct {
	Name string `mapstructure:"-" cbor:"name"`

	// Columns maps field indices to column names. One column must be
	// sentence.TokensColumn.
	Columns map[int]string `mapstructure:"columns" cbor:"columns"`

	// Label names the column a tagger predicts.
	Label string `mapstructure:"label" cbor:"label,omitempty"`

	Evaluate      bool   `mapstructure:"evaluate" cbor:"evaluate"`
	CommentSymbol string `mapstructure:"comment_symbol" cbor:"comment_symbol,omitempty"`
}

func (d Dataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDataset)
	}

	if d.Name != filepath.Base(d.Name) || d.Name == "." || d.Name == ".." {
		return fmt.Errorf("%w: %q: name must be a single path element", ErrInvalidDataset, d.Name)
	}

	seen := make(map[string]int, len(d.Columns))
	for i, name := range d.Columns {
		if i < 0 {
			return fmt.Errorf("%w: %q: negative column index %d", ErrInvalidDataset, d.Name, i)
		}

		if name == "" {
			return fmt.Errorf("%w: %q: column %d has no name", ErrInvalidDataset, d.Name, i)
		}

		if j, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q: column %q at index %d and %d", ErrInvalidDataset, d.Name, name, min(i, j), max(i, j))
		}
		seen[name] = i
	}

	if _, ok := seen[sentence.TokensColumn]; !ok {
		return fmt.Errorf("%w: %q: no %q column", ErrInvalidDataset, d.Name, sentence.TokensColumn)
	}

	if d.Label != "" {
		if _, ok := seen[d.Label]; !ok {
			return fmt.Errorf("%w: %q: label %q is not a column", ErrInvalidDataset, d.Name, d.Label)
		}
	}

	return nil
}

// Path returns the file of split under dir.
func (d Dataset) Path(dir, split string) string {
	return filepath.Join(dir, d.Name, split+".txt")
}

func (d Dataset) conllOptions(transform conll.Transform) conll.Options {
	return conll.Options{CommentSymbol: d.CommentSymbol, Transform: transform}
}

// sorted validates datasets and returns them ordered by name.
func sorted(datasets []Dataset) ([]Dataset, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: no datasets", ErrInvalidDataset)
	}

	sorted := make([]Dataset, len(datasets))
	copy(sorted, datasets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for i, d := range sorted {
		if err := d.Validate(); err != nil {
			return nil, err
		}

		if i > 0 && sorted[i-1].Name == d.Name {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidDataset, d.Name)
		}
	}

	return sorted, nil
}

// CacheKey derives the artifact name from the dataset names and the base name
// of the embedding file without its extension.
func CacheKey(datasets []Dataset, embeddingsPath string) string {
	names := make([]string, 0, len(datasets)+1)
	for _, d := range datasets {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	base := strings.TrimSuffix(filepath.Base(embeddingsPath), ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return strings.Join(append(names, base), "_")
}

// ArtifactPath returns where the artifact for key is stored under cacheDir.
func ArtifactPath(cacheDir, key string) string {
	return filepath.Join(cacheDir, key+".cbor.zst")
}
