package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ollama/seqprep/dataset"
	"github.com/ollama/seqprep/format"
)

func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "inspect ARTIFACT",
		Aliases: []string{"show"},
		Short:   "Show the contents of an artifact",
		Args:    cobra.ExactArgs(1),
		RunE:    InspectHandler,
	}
}

func InspectHandler(cmd *cobra.Command, args []string) error {
	a, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	s := dataset.Summarize(a)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Artifact")
	renderTable(out, nil, [][]string{
		{"  id", a.ID.String()},
		{"  created", format.HumanTime(a.CreatedAt, "Unknown")},
		{"  embeddings", a.EmbeddingsPath},
		{"  vectors", fmt.Sprintf("%s x %d", format.HumanNumber(uint64(s.Embeddings.Rows)), s.Embeddings.Dim)},
		{"  norm", fmt.Sprintf("%.4f ± %.4f", s.Embeddings.MeanNorm, s.Embeddings.StdDevNorm)},
	})
	fmt.Fprintln(out)

	var mappings [][]string
	for _, m := range s.Mappings {
		mappings = append(mappings, []string{m.Name, strconv.Itoa(m.Size)})
	}
	renderTable(out, []string{"MAPPING", "SIZE"}, mappings)
	fmt.Fprintln(out)

	var splits [][]string
	for _, split := range s.Splits {
		splits = append(splits, []string{
			split.Dataset,
			split.Split,
			strconv.Itoa(split.Sentences),
			strconv.Itoa(split.Tokens),
			format.Percent(split.Unknown, split.Tokens),
			strconv.Itoa(split.Padded),
		})
	}
	renderTable(out, []string{"DATASET", "SPLIT", "SENTENCES", "TOKENS", "UNKNOWN", "PADDED"}, splits)

	return nil
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	if header != nil {
		table.SetHeader(header)
	}
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
