package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ollama/seqprep/envconfig"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  ConfigHandler,
	}

	cmd.Flags().Bool("example", false, "Print an example config.toml")

	return cmd
}

func ConfigHandler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	example, err := cmd.Flags().GetBool("example")
	if err != nil {
		return err
	}

	if example {
		fmt.Fprint(out, envconfig.GenerateExampleConfig())
		return nil
	}

	values := envconfig.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([][]string, 0, len(names)+1)
	for _, name := range names {
		data = append(data, []string{name, values[name]})
	}

	if path := envconfig.ConfigPath(); path != "" {
		data = append(data, []string{"config file", path})
	}

	renderTable(out, []string{"NAME", "VALUE"}, data)
	return nil
}
