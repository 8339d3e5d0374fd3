package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ollama/seqprep/envconfig"
	"github.com/ollama/seqprep/logutil"
	"github.com/ollama/seqprep/version"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "seqprep",
		Short:   "Prepare sequence labeling corpora for neural taggers",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), logutil.Level(envconfig.Debug, envconfig.Trace)))
		},
	}

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		NewPrepareCmd(),
		NewEncodeCmd(),
		NewInspectCmd(),
		NewConfigCmd(),
	)

	for _, cmd := range rootCmd.Commands() {
		appendEnvDocs(cmd)
	}

	return rootCmd
}

// appendEnvDocs lists the environment variables in the usage of cmd.
func appendEnvDocs(cmd *cobra.Command) {
	vars := envconfig.AsMap()

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "      %-27s %s\n", name, vars[name].Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + sb.String())
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
