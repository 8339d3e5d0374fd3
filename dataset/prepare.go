package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ollama/seqprep/conll"
	"github.com/ollama/seqprep/embed"
	"github.com/ollama/seqprep/encode"
	"github.com/ollama/seqprep/features"
	"github.com/ollama/seqprep/mapping"
	"github.com/ollama/seqprep/sentence"
)

type Options struct {
	// DataDir holds one directory per dataset.
	DataDir string

	// CacheDir receives the artifact.
	CacheDir string

	// Threshold is the minimum training count of a token added to the
	// vocabulary without a pretrained vector. Negative values disable it.
	Threshold int

	// Reduce keeps only embeddings of tokens that occur in some split.
	Reduce bool

	// PadSingleToken pads sentences of one token to length two.
	PadSingleToken bool

	Seed uint64

	// Transform, if set, rewrites every column value as it is read.
	Transform conll.Transform

	// Progress reports bytes read from the embedding file.
	Progress func(completed, total int64)

	// Status, if set, is called when Prepare enters a new stage.
	Status func(status string)
}

func (o Options) status(format string, args ...any) {
	if o.Status != nil {
		o.Status(fmt.Sprintf(format, args...))
	}
}

// corpus holds the sentences of each split in Splits order.
type corpus [len(Splits)][]*sentence.Sentence

func (c *corpus) all() []*sentence.Sentence {
	var all []*sentence.Sentence
	for _, sentences := range c {
		all = append(all, sentences...)
	}
	return all
}

// Prepare builds the artifact for datasets and the embedding file and returns
// its path. An existing artifact for the same dataset names and embedding
// file is reused without reading any input.
func Prepare(ctx context.Context, embeddingsPath string, datasets []Dataset, opts Options) (string, error) {
	datasets, err := sorted(datasets)
	if err != nil {
		return "", err
	}

	path := ArtifactPath(opts.CacheDir, CacheKey(datasets, embeddingsPath))
	if _, err := os.Stat(path); err == nil {
		slog.Info("using existing artifact", "path", path)
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	start := time.Now()

	corpora := make([]*corpus, len(datasets))
	for i, d := range datasets {
		opts.status("reading %s", d.Name)
		c, err := readCorpus(ctx, opts.DataDir, d, opts.Transform)
		if err != nil {
			return "", err
		}
		corpora[i] = c
	}

	var train []string
	for _, c := range corpora {
		train = append(train, conll.Tokens(c[0])...)
	}

	var needed embed.Needed
	if opts.Reduce {
		var tokens []string
		for _, c := range corpora {
			tokens = append(tokens, conll.Tokens(c.all())...)
		}
		needed = embed.NeededVocabulary(tokens)
		slog.Info("restricting embeddings to corpus vocabulary", "forms", len(needed))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	vocab, err := embed.Build(embeddingsPath, embed.Options{
		Needed:    needed,
		Train:     train,
		Threshold: opts.Threshold,
		Seed:      opts.Seed,
		Progress:  opts.Progress,
	})
	if err != nil {
		return "", err
	}

	set := &mapping.Set{
		Tokens:     vocab.Tokens,
		Casing:     features.CasingVocabulary(),
		Characters: features.CharacterVocabulary(),
	}

	data := make(map[string]*Matrices, len(datasets))
	for i, d := range datasets {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slog.Info("transforming dataset", "name", d.Name)
		opts.status("encoding %s", d.Name)

		c := corpora[i]
		all := c.all()
		set.Extend(all)
		features.AddCharacters(all)
		features.AddCasing(all)

		m, err := encodeCorpus(c, set, encode.Options{PadSingleToken: opts.PadSingleToken})
		if err != nil {
			return "", fmt.Errorf("%s: %w", d.Name, err)
		}
		data[d.Name] = m
	}

	set.Freeze()

	artifact := &Artifact{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		EmbeddingsPath: embeddingsPath,
		Embeddings:     vocab.Embeddings,
		Mappings:       set,
		Datasets:       datasets,
		Data:           data,
	}

	opts.status("writing artifact")
	if err := artifact.WriteFile(path); err != nil {
		return "", err
	}

	slog.Info("artifact saved", "path", path, "id", artifact.ID, "elapsed", time.Since(start).Round(time.Millisecond))
	return path, nil
}

// readCorpus reads the splits of d concurrently.
func readCorpus(ctx context.Context, dir string, d Dataset, transform conll.Transform) (*corpus, error) {
	var c corpus

	g, ctx := errgroup.WithContext(ctx)
	for i, split := range Splits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			sentences, err := conll.ReadFile(d.Path(dir, split), d.Columns, d.conllOptions(transform))
			if err != nil {
				return err
			}

			c[i] = sentences
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("read dataset", "name", d.Name, "train", len(c[0]), "dev", len(c[1]), "test", len(c[2]))
	return &c, nil
}

func encodeCorpus(c *corpus, set *mapping.Set, opts encode.Options) (*Matrices, error) {
	var m Matrices
	for i, rows := range []*[]encode.Row{&m.Train, &m.Dev, &m.Test} {
		encoded, _, err := encode.Encode(c[i], set, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Splits[i], err)
		}
		*rows = encoded
	}
	return &m, nil
}
