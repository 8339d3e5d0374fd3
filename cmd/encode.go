package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ollama/seqprep/conll"
	"github.com/ollama/seqprep/dataset"
	"github.com/ollama/seqprep/encode"
	"github.com/ollama/seqprep/features"
	"github.com/ollama/seqprep/sentence"
	"github.com/ollama/seqprep/tokenizer"
)

func NewEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode ARTIFACT [FILE]",
		Short: "Encode text with the mappings of an artifact",
		Long: `Split text into sentences and words, encode them with the mappings of
an artifact and print one JSON row per sentence. Text is read from FILE or
standard input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: EncodeHandler,
	}

	cmd.Flags().Bool("conll", false, "Read one token per line instead of raw text")
	cmd.Flags().String("comment", "", "Skip lines starting with this symbol (with --conll)")
	cmd.Flags().Bool("no-pad", false, "Do not pad one-token sentences")

	return cmd
}

func EncodeHandler(cmd *cobra.Command, args []string) error {
	a, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) > 1 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	sentences, err := readSentences(cmd, r)
	if err != nil {
		return err
	}

	features.AddCharacters(sentences)
	features.AddCasing(sentences)

	noPad, err := cmd.Flags().GetBool("no-pad")
	if err != nil {
		return err
	}

	rows, _, err := encode.Encode(sentences, a.Mappings, encode.Options{PadSingleToken: !noPad})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}

	return nil
}

func readSentences(cmd *cobra.Command, r io.Reader) ([]*sentence.Sentence, error) {
	isConll, err := cmd.Flags().GetBool("conll")
	if err != nil {
		return nil, err
	}

	if isConll {
		comment, err := cmd.Flags().GetString("comment")
		if err != nil {
			return nil, err
		}

		return conll.Read(r, map[int]string{0: sentence.TokensColumn}, conll.Options{CommentSymbol: comment})
	}

	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return tokenizer.Tokenize(string(text)), nil
}
