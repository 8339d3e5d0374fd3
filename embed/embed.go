// Package embed builds the token vocabulary and its embedding matrix from a
// file of pretrained vectors, optionally extended with frequent corpus tokens
// the file does not cover.
package embed

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/ollama/seqprep/features"
	"github.com/ollama/seqprep/freq"
	"github.com/ollama/seqprep/mapping"
)

const (
	PaddingToken = "PADDING_TOKEN"
	UnknownToken = "UNKNOWN_TOKEN"

	// DefaultLimit caps the number of tokens added by frequency extension.
	DefaultLimit = 10000
)

var ErrNoEmbeddings = errors.New("no embeddings found")

// Embeddings is a dense row-major matrix with one row per token id.
type Embeddings struct {
	Dim  int       `cbor:"dim"`
	Data []float32 `cbor:"data"`
}

// Len returns the number of rows.
func (e *Embeddings) Len() int {
	if e.Dim == 0 {
		return 0
	}
	return len(e.Data) / e.Dim
}

// Row returns row i. The returned slice aliases the matrix.
func (e *Embeddings) Row(i int) []float32 {
	return e.Data[i*e.Dim : (i+1)*e.Dim : (i+1)*e.Dim]
}

// Vocabulary is the token mapping together with its embedding matrix. Row i
// of Embeddings is the vector of the token with id i.
type Vocabulary struct {
	Tokens     *mapping.Mapping
	Embeddings *Embeddings
}

// Needed is the set of token forms a corpus may look up.
type Needed map[string]struct{}

// NeededVocabulary returns every lookup form of every token.
func NeededVocabulary(tokens []string) Needed {
	needed := make(Needed, len(tokens))
	for _, token := range tokens {
		for _, form := range Forms(token) {
			needed[form] = struct{}{}
		}
	}
	return needed
}

func (n Needed) Has(token string) bool {
	_, ok := n[token]
	return ok
}

// Forms returns the lookup forms of token in fallback order: the token, its
// lower-cased form, its normalized form and its lower-cased normalized form.
// The last one is the key under which frequency extension adds tokens.
func Forms(token string) [4]string {
	lower := strings.ToLower(token)
	return [4]string{token, lower, features.Normalize(token), features.Normalize(lower)}
}

// hasAnyForm reports whether any lookup form of token is in the vocabulary.
func (b *Builder) hasAnyForm(token string) bool {
	for _, form := range Forms(token) {
		if b.tokens.Has(form) {
			return true
		}
	}
	return false
}

// Builder assembles a Vocabulary. The token mapping and embedding rows grow
// together; Len is always both the number of tokens and the number of rows.
type Builder struct {
	tokens *mapping.Mapping
	data   []float32
	dim    int

	needed Needed
	rng    *rand.Rand
}

func NewBuilder(seed uint64) *Builder {
	return &Builder{
		tokens: mapping.New("tokens"),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Restrict limits Add to tokens in needed. An empty set restricts nothing.
func (b *Builder) Restrict(needed Needed) {
	b.needed = needed
}

func (b *Builder) Len() int {
	return b.tokens.Len()
}

func (b *Builder) Dim() int {
	return b.dim
}

// Has reports whether token has been added.
func (b *Builder) Has(token string) bool {
	return b.tokens.Has(token)
}

func (b *Builder) init(dim int) {
	b.dim = dim
	b.append(PaddingToken, make([]float32, dim))
	b.append(UnknownToken, b.random())
}

func (b *Builder) append(token string, vector []float32) {
	b.tokens.Add(token)
	b.data = append(b.data, vector...)
}

func (b *Builder) random() []float32 {
	v := make([]float32, b.dim)
	for i := range v {
		v[i] = float32(b.rng.Float64()*0.5 - 0.25)
	}
	return v
}

// Add inserts token with vector unless it is already present or excluded by
// Restrict. The first call fixes the dimension and inserts PaddingToken and
// UnknownToken ahead of any other token.
func (b *Builder) Add(token string, vector []float32) (bool, error) {
	if b.dim == 0 {
		if len(vector) == 0 {
			return false, fmt.Errorf("token %q: empty vector", token)
		}
		b.init(len(vector))
	}

	if len(vector) != b.dim {
		return false, fmt.Errorf("token %q: dimension %d, expected %d", token, len(vector), b.dim)
	}

	if len(b.needed) > 0 && !b.needed.Has(token) {
		return false, nil
	}

	if b.tokens.Has(token) {
		return false, nil
	}

	b.append(token, vector)
	return true, nil
}

// Extend adds, with random vectors, the lower-cased normalized forms of the
// most frequent tokens that are unknown under all lookup forms. Case variants
// of a word share one count. At most limit tokens are
// added and only those seen at least threshold times.
func (b *Builder) Extend(tokens []string, threshold, limit int) ([]string, error) {
	if b.dim == 0 {
		return nil, ErrNoEmbeddings
	}

	fd := freq.New()
	for _, token := range tokens {
		if b.hasAnyForm(token) {
			continue
		}
		fd.Add(Forms(token)[3])
	}

	var added []string
	for _, e := range fd.MostCommon(limit) {
		if e.Count < threshold {
			break
		}

		b.append(e.Key, b.random())
		added = append(added, e.Key)
	}

	return added, nil
}

// Finish returns the vocabulary. The builder must not be used afterwards.
func (b *Builder) Finish() (*Vocabulary, error) {
	if b.dim == 0 {
		return nil, ErrNoEmbeddings
	}

	b.tokens.Freeze()
	v := &Vocabulary{
		Tokens:     b.tokens,
		Embeddings: &Embeddings{Dim: b.dim, Data: b.data},
	}

	b.tokens, b.data = nil, nil
	return v, nil
}

type Options struct {
	// Needed restricts the vocabulary to these tokens when non-empty.
	Needed Needed

	// Train holds the training tokens considered for frequency extension.
	Train []string

	// Threshold is the minimum count of an extension token. Negative
	// values disable extension.
	Threshold int

	// Limit caps the number of extension tokens. Zero means DefaultLimit.
	Limit int

	Seed uint64

	// Progress, if set, is called periodically with the bytes consumed and
	// the total size of the file.
	Progress func(completed, total int64)
}

// Build reads the vectors file at path and returns the resulting vocabulary.
func Build(path string, opts Options) (*Vocabulary, error) {
	slog.Info("reading embeddings", "path", path)

	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := NewBuilder(opts.Seed)
	b.Restrict(opts.Needed)

	var lines int
	for {
		token, vector, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if _, err := b.Add(token, vector); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		lines++
		if opts.Progress != nil && lines%4096 == 0 {
			opts.Progress(f.Progress())
		}
	}

	if opts.Progress != nil {
		opts.Progress(f.Progress())
	}

	if b.Dim() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoEmbeddings)
	}

	slog.Info("read embeddings", "tokens", b.Len(), "dimension", b.Dim(), "skipped", f.Skipped())

	if opts.Threshold >= 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultLimit
		}

		added, err := b.Extend(opts.Train, opts.Threshold, limit)
		if err != nil {
			return nil, err
		}
		slog.Info("added words", "count", len(added), "threshold", opts.Threshold)
	}

	return b.Finish()
}
