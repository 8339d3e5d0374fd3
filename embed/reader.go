package embed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ollama/seqprep/logutil"
)

// Reader reads pretrained vectors in text format: one token per line followed
// by its whitespace separated components. The first accepted line fixes the
// dimension; later lines with a different dimension are skipped.
type Reader struct {
	r *bufio.Reader

	dim     int
	line    int
	skipped int
}

func NewReader(r io.Reader) *Reader {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &Reader{r: bufio.NewReaderSize(transform.NewReader(r, tr), 1<<20)}
}

// Dim returns the vector dimension, or 0 before the first vector is read.
func (r *Reader) Dim() int {
	return r.dim
}

// Skipped returns the number of malformed lines skipped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Next returns the next token and its vector. It returns io.EOF when the
// input is exhausted.
func (r *Reader) Next() (string, []float32, error) {
	for {
		line, err := r.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", nil, err
		}

		if line == "" && errors.Is(err, io.EOF) {
			return "", nil, io.EOF
		}

		r.line++
		token, vector, ok := r.parse(line)
		if ok {
			return token, vector, nil
		}

		if errors.Is(err, io.EOF) {
			return "", nil, io.EOF
		}
	}
}

func (r *Reader) parse(line string) (string, []float32, bool) {
	// any run of spaces or tabs separates fields
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, false
	}

	if r.line == 1 && isHeader(fields) {
		slog.Debug("skipping word2vec header", "header", strings.Join(fields, " "))
		return "", nil, false
	}

	n := len(fields) - 1
	switch {
	case n == 0:
		r.skip("token without vector", "token", fields[0])
		return "", nil, false
	case r.dim > 0 && n != r.dim:
		r.skip("unexpected vector dimension", "token", fields[0], "dimension", n, "expected", r.dim)
		return "", nil, false
	}

	vector := make([]float32, n)
	for i, s := range fields[1:] {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			r.skip("invalid vector component", "token", fields[0], "error", err)
			return "", nil, false
		}
		vector[i] = float32(f)
	}

	if r.dim == 0 {
		r.dim = n
	}

	logutil.Trace("embedding", "line", r.line, "token", fields[0])
	return fields[0], vector, true
}

func (r *Reader) skip(msg string, args ...any) {
	r.skipped++
	slog.Warn(msg, append([]any{"line", r.line}, args...)...)
}

// isHeader reports whether fields look like a word2vec "<count> <dimension>" header.
func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}

	for _, f := range fields {
		if _, err := strconv.ParseUint(f, 10, 64); err != nil {
			return false
		}
	}

	return true
}

// File is a Reader over a file on disk, transparently decompressing files
// whose name ends in ".gz".
type File struct {
	*Reader

	f       *os.File
	gz      *gzip.Reader
	counter *counter
	size    int64
}

// Open opens the vectors file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	c := &counter{r: f}
	ef := File{f: f, counter: c, size: fi.Size()}

	var r io.Reader = c
	if strings.HasSuffix(path, ".gz") {
		ef.gz, err = gzip.NewReader(c)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = ef.gz
	}

	ef.Reader = NewReader(r)
	return &ef, nil
}

// Progress returns the number of bytes of the file consumed so far and the
// file size. For compressed files both are compressed sizes.
func (f *File) Progress() (int64, int64) {
	return f.counter.n, f.size
}

func (f *File) Close() error {
	if f.gz != nil {
		if err := f.gz.Close(); err != nil {
			f.f.Close()
			return err
		}
	}

	return f.f.Close()
}

type counter struct {
	r io.Reader
	n int64
}

func (c *counter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
