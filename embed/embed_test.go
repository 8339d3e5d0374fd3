package embed

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(name, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}

	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	return p
}

func readAll(t *testing.T, r *Reader) (tokens []string, vectors [][]float32) {
	t.Helper()

	for {
		token, vector, err := r.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
		tokens = append(tokens, token)
		vectors = append(vectors, vector)
	}
}

func TestReader(t *testing.T) {
	input := "the 0.1 0.2\n\ncat 0.3 0.4 \r\nbad 0.5\nnan x 0.1\ndog 0.5 0.6"

	r := NewReader(strings.NewReader(input))
	tokens, vectors := readAll(t, r)

	assert.Equal(t, []string{"the", "cat", "dog"}, tokens)
	if diff := cmp.Diff([][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}, vectors); diff != "" {
		t.Errorf("vectors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, r.Dim())
	assert.Equal(t, 2, r.Skipped())
}

func TestReaderWhitespace(t *testing.T) {
	r := NewReader(strings.NewReader("the\t0.1\t0.2\ncat  0.3   0.4\n  dog 0.5 0.6\n"))
	tokens, vectors := readAll(t, r)

	assert.Equal(t, []string{"the", "cat", "dog"}, tokens)
	if diff := cmp.Diff([][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}, vectors); diff != "" {
		t.Errorf("vectors mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, r.Skipped())
}

func TestReaderWord2VecHeader(t *testing.T) {
	r := NewReader(strings.NewReader("2 3\nthe 1 2 3\ncat 4 5 6\n"))
	tokens, _ := readAll(t, r)

	assert.Equal(t, []string{"the", "cat"}, tokens)
	assert.Equal(t, 3, r.Dim())
	assert.Zero(t, r.Skipped())
}

func TestReaderByteOrderMark(t *testing.T) {
	r := NewReader(strings.NewReader("\ufeffthe 1\n"))
	tokens, _ := readAll(t, r)
	assert.Equal(t, []string{"the"}, tokens)
}

func TestBuilderInvariants(t *testing.T) {
	b := NewBuilder(1)
	assert.Zero(t, b.Len())

	ok, err := b.Add("the", []float32{0.1, 0.2})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, b.Len())
	assert.Len(t, b.data, b.Len()*b.Dim())

	ok, err = b.Add("the", []float32{0.9, 0.9})
	require.NoError(t, err)
	assert.False(t, ok, "first occurrence wins")

	_, err = b.Add("cat", []float32{0.1})
	assert.Error(t, err)

	added, err := b.Extend([]string{"foo", "foo"}, 1, DefaultLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, added)
	assert.Len(t, b.data, b.Len()*b.Dim())

	v, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, v.Tokens.Len(), v.Embeddings.Len())
	assert.True(t, v.Tokens.Frozen())

	id, _ := v.Tokens.ID("the")
	assert.Equal(t, []float32{0.1, 0.2}, v.Embeddings.Row(id))
}

func TestBuilderRestrict(t *testing.T) {
	b := NewBuilder(1)
	b.Restrict(NeededVocabulary([]string{"The", "4x4"}))

	for _, token := range []string{"the", "The", "cat", "0x0", "4x4"} {
		_, err := b.Add(token, []float32{1})
		require.NoError(t, err)
	}

	v, err := b.Finish()
	require.NoError(t, err)

	// padding and unknown are inserted even though the first token could be filtered
	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "The", "0x0", "4x4"}, v.Tokens.Keys())
}

func TestBuild(t *testing.T) {
	p := writeFile(t, "emb.txt", "the 0.1 0.2\ncat 0.3 0.4\n")

	v, err := Build(p, Options{Threshold: -1, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "cat"}, v.Tokens.Keys())
	assert.Equal(t, 2, v.Embeddings.Dim)
	assert.Equal(t, v.Tokens.Len(), v.Embeddings.Len())

	pad, _ := v.Tokens.ID(PaddingToken)
	unk, _ := v.Tokens.ID(UnknownToken)
	assert.Equal(t, 0, pad)
	assert.Equal(t, 1, unk)
	assert.Equal(t, []float32{0, 0}, v.Embeddings.Row(pad))

	for _, f := range v.Embeddings.Row(unk) {
		assert.GreaterOrEqual(t, f, float32(-0.25))
		assert.LessOrEqual(t, f, float32(0.25))
	}

	cat, _ := v.Tokens.ID("cat")
	assert.Equal(t, []float32{0.3, 0.4}, v.Embeddings.Row(cat))
}

func TestBuildGzip(t *testing.T) {
	p := writeFile(t, "emb.txt.gz", "the 0.1 0.2\ncat 0.3 0.4\n")

	var calls int
	v, err := Build(p, Options{Threshold: -1, Progress: func(completed, total int64) {
		calls++
		assert.Equal(t, completed, total)
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "cat"}, v.Tokens.Keys())
	assert.Equal(t, 1, calls)
}

func TestBuildFrequencyExtension(t *testing.T) {
	p := writeFile(t, "emb.txt", "the 0.1 0.2\ncat 0.3 0.4\n")

	train := []string{"the", "foo", "cat", "foo", "bar", "The", "foo", "1999", "2000"}

	v, err := Build(p, Options{Train: train, Threshold: 2, Seed: 1})
	require.NoError(t, err)

	assert.True(t, v.Tokens.Has("foo"))
	assert.True(t, v.Tokens.Has("0000"), "digit variants share a normalized form")
	assert.False(t, v.Tokens.Has("bar"))
	assert.False(t, v.Tokens.Has("The"), "covered by its lower-cased form")
	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "cat", "foo", "0000"}, v.Tokens.Keys())
	assert.Equal(t, v.Tokens.Len(), v.Embeddings.Len())

	foo, _ := v.Tokens.ID("foo")
	assert.NotEqual(t, []float32{0, 0}, v.Embeddings.Row(foo))
}

func TestBuildFrequencyExtensionFoldsCase(t *testing.T) {
	p := writeFile(t, "emb.txt", "the 0.1 0.2\n")

	v, err := Build(p, Options{Train: []string{"Foo", "Foo", "foo", "Bar1", "bar2"}, Threshold: 3, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "foo"}, v.Tokens.Keys())

	v, err = Build(p, Options{Train: []string{"Bar1", "bar2"}, Threshold: 2, Seed: 1})
	require.NoError(t, err)
	assert.True(t, v.Tokens.Has("bar0"))
}

func TestForms(t *testing.T) {
	assert.Equal(t, [4]string{"Foo12", "foo12", "Foo00", "foo00"}, Forms("Foo12"))
	assert.Equal(t, [4]string{"the", "the", "the", "the"}, Forms("the"))
}

func TestBuildFrequencyLimit(t *testing.T) {
	p := writeFile(t, "emb.txt", "the 0.1\n")

	v, err := Build(p, Options{Train: []string{"a", "b", "b", "c", "c", "c"}, Threshold: 0, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{PaddingToken, UnknownToken, "the", "c", "b"}, v.Tokens.Keys())
}

func TestBuildDeterministic(t *testing.T) {
	p := writeFile(t, "emb.txt", "the 0.1 0.2 0.3\n")

	a, err := Build(p, Options{Train: []string{"x"}, Threshold: 1, Seed: 7})
	require.NoError(t, err)
	b, err := Build(p, Options{Train: []string{"x"}, Threshold: 1, Seed: 7})
	require.NoError(t, err)

	if diff := cmp.Diff(a.Embeddings, b.Embeddings); diff != "" {
		t.Errorf("embeddings differ for the same seed (-a +b):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	p := writeFile(t, "empty.txt", "\n\nbad\n")
	_, err = Build(p, Options{})
	assert.ErrorIs(t, err, ErrNoEmbeddings)
}
