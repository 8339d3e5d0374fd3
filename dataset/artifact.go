package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/ollama/seqprep/embed"
	"github.com/ollama/seqprep/encode"
	"github.com/ollama/seqprep/mapping"
)

// Matrices are the encoded splits of one dataset.
type Matrices struct {
	Train []encode.Row `cbor:"train"`
	Dev   []encode.Row `cbor:"dev"`
	Test  []encode.Row `cbor:"test"`
}

// Split returns the rows of the named split.
func (m *Matrices) Split(name string) ([]encode.Row, bool) {
	switch name {
	case "train":
		return m.Train, true
	case "dev":
		return m.Dev, true
	case "test":
		return m.Test, true
	default:
		return nil, false
	}
}

// Artifact is everything a tagger needs to train on the prepared datasets.
type Artifact struct {
	ID             uuid.UUID            `cbor:"id"`
	CreatedAt      time.Time            `cbor:"created_at"`
	EmbeddingsPath string               `cbor:"embeddings_path"`
	Embeddings     *embed.Embeddings    `cbor:"embeddings"`
	Mappings       *mapping.Set         `cbor:"mappings"`
	Datasets       []Dataset            `cbor:"datasets"`
	Data           map[string]*Matrices `cbor:"data"`
}

var (
	encMode = func() cbor.EncMode {
		em, err := cbor.EncOptions{
			Sort: cbor.SortCanonical,
			Time: cbor.TimeRFC3339Nano,
		}.EncMode()
		if err != nil {
			panic(err)
		}
		return em
	}()

	// embedding matrices and splits easily exceed the default limits
	decMode = func() cbor.DecMode {
		dm, err := cbor.DecOptions{
			MaxArrayElements: math.MaxInt32,
			MaxMapPairs:      math.MaxInt32,
		}.DecMode()
		if err != nil {
			panic(err)
		}
		return dm
	}()
)

// WriteFile writes a zstd compressed CBOR encoding of a to path. The file
// only appears at path once it is complete.
func (a *Artifact) WriteFile(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.partial")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := encMode.NewEncoder(zw).Encode(a); err != nil {
		zw.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}

	if err := zw.Close(); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}

// Load reads an artifact written by WriteFile. Its mappings are frozen.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var a Artifact
	if err := decMode.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if a.Mappings == nil || a.Embeddings == nil {
		return nil, fmt.Errorf("%s: incomplete artifact", path)
	}

	for name, m := range map[string]*mapping.Mapping{
		"tokens":     a.Mappings.Tokens,
		"casing":     a.Mappings.Casing,
		"characters": a.Mappings.Characters,
	} {
		if m == nil {
			return nil, fmt.Errorf("%s: incomplete artifact: no %s mapping", path, name)
		}
	}

	if a.Mappings.Tokens.Len() != a.Embeddings.Len() {
		return nil, fmt.Errorf("%s: %d tokens but %d embeddings", path, a.Mappings.Tokens.Len(), a.Embeddings.Len())
	}

	return &a, nil
}
