package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ollama/seqprep/dataset"
	"github.com/ollama/seqprep/envconfig"
	"github.com/ollama/seqprep/progress"
)

func NewPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build or reuse the artifact for a set of datasets",
		Long: `Read the datasets described in the config file and the embedding file,
encode every split and write the artifact to the cache directory. The path of
the artifact is printed on success.`,
		Args: cobra.NoArgs,
		RunE: PrepareHandler,
	}

	cmd.Flags().StringP("embeddings", "e", "", "Embedding file, optionally gzip compressed")
	cmd.Flags().StringP("config", "c", "datasets.toml", "TOML file describing the datasets")
	cmd.Flags().StringSlice("dataset", nil, "Only prepare the named datasets")
	cmd.Flags().Int("threshold", 0, "Minimum training count of words added without a vector, negative to disable (default $SEQPREP_UNKNOWN_THRESHOLD)")
	cmd.Flags().Bool("reduce", false, "Only keep embeddings of words that occur in the datasets")
	cmd.Flags().Bool("no-pad", false, "Do not pad one-token sentences")
	cmd.Flags().String("data-dir", "", "Directory holding the datasets (default $SEQPREP_DATA_DIR)")
	cmd.Flags().String("cache-dir", "", "Directory receiving the artifact (default $SEQPREP_CACHE_DIR)")
	cmd.MarkFlagRequired("embeddings")

	return cmd
}

func PrepareHandler(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	embeddings, err := flags.GetString("embeddings")
	if err != nil {
		return err
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return err
	}

	datasets, err := dataset.ReadConfig(configPath)
	if err != nil {
		return err
	}

	only, err := flags.GetStringSlice("dataset")
	if err != nil {
		return err
	}

	if len(only) > 0 {
		datasets, err = selectDatasets(datasets, only)
		if err != nil {
			return err
		}
	}

	opts := dataset.Options{
		DataDir:        envconfig.DataDir,
		CacheDir:       envconfig.CacheDir,
		Threshold:      envconfig.UnknownThreshold,
		PadSingleToken: true,
		Seed:           envconfig.Seed,
	}

	if flags.Changed("threshold") {
		if opts.Threshold, err = flags.GetInt("threshold"); err != nil {
			return err
		}
	}

	if opts.Reduce, err = flags.GetBool("reduce"); err != nil {
		return err
	}

	noPad, err := flags.GetBool("no-pad")
	if err != nil {
		return err
	}
	opts.PadSingleToken = !noPad

	if dir, _ := flags.GetString("data-dir"); dir != "" {
		opts.DataDir = dir
	} else if !filepath.IsAbs(opts.DataDir) {
		// relative data directories are resolved against the config file
		opts.DataDir = filepath.Join(filepath.Dir(configPath), opts.DataDir)
	}

	if dir, _ := flags.GetString("cache-dir"); dir != "" {
		opts.CacheDir = dir
	}

	if isTerminal() {
		p := progress.NewProgress(cmd.ErrOrStderr())
		defer p.StopAndClear()

		showProgress(p, filepath.Base(embeddings), &opts)
	}

	slog.Debug("preparing", "datasets", len(datasets), "embeddings", embeddings, "data", opts.DataDir, "cache", opts.CacheDir)

	path, err := dataset.Prepare(cmd.Context(), embeddings, datasets, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func selectDatasets(datasets []dataset.Dataset, names []string) ([]dataset.Dataset, error) {
	byName := make(map[string]dataset.Dataset, len(datasets))
	for _, d := range datasets {
		byName[d.Name] = d
	}

	selected := make([]dataset.Dataset, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in the config", dataset.ErrInvalidDataset, name)
		}
		selected = append(selected, d)
	}

	return selected, nil
}

// showProgress reports the stages of Prepare on p: a spinner per status and a
// bar while the embedding file is read.
func showProgress(p *progress.Progress, name string, opts *dataset.Options) {
	var bar *progress.Bar
	var status string
	var spinner *progress.Spinner

	opts.Progress = func(completed, total int64) {
		if bar == nil {
			if spinner != nil {
				spinner.Stop()
			}

			bar = progress.NewBar(fmt.Sprintf("reading %s", name), total, 0)
			p.Add(name, bar)
		}
		bar.Set(completed)
	}

	opts.Status = func(s string) {
		if s == status {
			return
		}

		if spinner != nil {
			spinner.Stop()
		}

		status = s
		spinner = progress.NewSpinner(status)
		p.Add(status, spinner)
	}
}
