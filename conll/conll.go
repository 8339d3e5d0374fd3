// Package conll reads column-formatted corpora: one token per line, fields
// separated by whitespace, sentences separated by blank lines.
package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ollama/seqprep/sentence"
)

// Transform rewrites the value of a column. fields holds every field of the
// line the value was read from.
type Transform func(column, value string, fields []string) string

type Options struct {
	// CommentSymbol, if set, marks lines to skip. A comment line also ends
	// the current sentence.
	CommentSymbol string

	Transform Transform
}

// ReadFile reads the sentences of the corpus file at path.
func ReadFile(path string, columns map[int]string, opts Options) ([]*sentence.Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sentences, err := Read(f, columns, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sentences, nil
}

// Read reads sentences from r. columns maps field indices to column names;
// fields without a name are ignored.
func Read(r io.Reader, columns map[int]string, opts Options) ([]*sentence.Sentence, error) {
	indices := make([]int, 0, len(columns))
	for i := range columns {
		if i < 0 {
			return nil, fmt.Errorf("invalid column index %d", i)
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var sentences []*sentence.Sentence
	var current *sentence.Sentence
	flush := func() {
		if current != nil {
			sentences = append(sentences, current)
			current = nil
		}
	}

	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, tr))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var n int
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || (opts.CommentSymbol != "" && strings.HasPrefix(line, opts.CommentSymbol)) {
			flush()
			continue
		}

		fields := strings.Fields(line)
		if len(indices) > 0 && indices[len(indices)-1] >= len(fields) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, found %d", n, indices[len(indices)-1]+1, len(fields))
		}

		if current == nil {
			current = &sentence.Sentence{}
			for _, i := range indices {
				current.Set(columns[i], nil)
			}
		}

		for _, i := range indices {
			name, value := columns[i], fields[i]
			if opts.Transform != nil {
				value = opts.Transform(name, value, fields)
			}
			current.Append(name, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()
	return sentences, nil
}

// Tokens returns the tokens of every sentence in order.
func Tokens(sentences []*sentence.Sentence) []string {
	var n int
	for _, s := range sentences {
		n += s.Len()
	}

	tokens := make([]string, 0, n)
	for _, s := range sentences {
		tokens = append(tokens, s.Tokens...)
	}

	return tokens
}
