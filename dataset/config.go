package dataset

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// ReadConfig reads dataset descriptions from a TOML file with one table per
// dataset:
//
//	[conll2000]
//	label = "chunk"
//	comment_symbol = "#"
//	columns = { 0 = "tokens", 2 = "chunk" }
func ReadConfig(path string) ([]Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	datasets, err := DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return datasets, nil
}

// DecodeConfig decodes and validates dataset descriptions. The result is
// ordered by name.
func DecodeConfig(r io.Reader) ([]Dataset, error) {
	var raw map[string]any
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	datasets := make([]Dataset, 0, len(names))
	for _, name := range names {
		table, ok := raw[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a table", ErrInvalidDataset, name)
		}

		d := Dataset{Name: name}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &d,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(table); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDataset, name, err)
		}

		if err := d.Validate(); err != nil {
			return nil, err
		}

		datasets = append(datasets, d)
	}

	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: no datasets", ErrInvalidDataset)
	}

	return datasets, nil
}
