package mapping

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollama/seqprep/sentence"
)

func TestMappingAdd(t *testing.T) {
	m := New("tokens", "PADDING_TOKEN", "UNKNOWN_TOKEN")

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.Add("the"))
	assert.Equal(t, 3, m.Add("cat"))
	assert.Equal(t, 2, m.Add("the"), "existing keys keep their id")

	id, ok := m.ID("PADDING_TOKEN")
	require.True(t, ok)
	assert.Equal(t, 0, id)

	key, ok := m.Key(3)
	require.True(t, ok)
	assert.Equal(t, "cat", key)

	_, ok = m.Key(4)
	assert.False(t, ok)
	_, ok = m.Key(-1)
	assert.False(t, ok)

	if diff := cmp.Diff([]string{"PADDING_TOKEN", "UNKNOWN_TOKEN", "the", "cat"}, m.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMappingFrozen(t *testing.T) {
	m := New("casing", "PADDING", "other")
	m.Freeze()

	assert.Equal(t, 1, m.Add("other"), "existing keys are still resolved")
	assert.Panics(t, func() { m.Add("numeric") })
}

func TestMappingCBOR(t *testing.T) {
	m := New("POS", Outside, "DET", "NOUN")

	bts, err := cbor.Marshal(m)
	require.NoError(t, err)

	var got Mapping
	require.NoError(t, cbor.Unmarshal(bts, &got))

	assert.Equal(t, "POS", got.Name())
	assert.Equal(t, m.Keys(), got.Keys())
	assert.True(t, got.Frozen())

	id, ok := got.ID("NOUN")
	require.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestSetExtend(t *testing.T) {
	s1 := sentence.New("the", "cat")
	s1.Set("POS", []string{"DET", "NOUN"})
	s2 := sentence.New("runs")
	s2.Set("POS", []string{"VERB"})
	s2.Set("NER", []string{"O"})
	s3 := sentence.New("a", "dog")
	s3.Set("POS", []string{"DET", "NOUN"})

	var set Set
	set.Extend([]*sentence.Sentence{s1, s2, s3})

	if diff := cmp.Diff([]string{"NER", "POS"}, set.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"O", "DET", "NOUN", "VERB"}, set.Column("POS").Keys()); diff != "" {
		t.Errorf("POS keys mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"O"}, set.Column("NER").Keys()); diff != "" {
		t.Errorf("NER keys mismatch (-want +got):\n%s", diff)
	}

	// idempotent
	set.Extend([]*sentence.Sentence{s1, s2, s3})
	assert.Equal(t, 4, set.Column("POS").Len())

	s4 := sentence.New("x")
	s4.Set("POS", []string{"ADJ"})
	set.Extend([]*sentence.Sentence{s4})
	id, ok := set.Column("POS").ID("ADJ")
	require.True(t, ok)
	assert.Equal(t, 4, id)
}

func TestSetFreeze(t *testing.T) {
	set := Set{
		Tokens: New("tokens", "PADDING_TOKEN"),
		Casing: New("casing", "PADDING"),
		Columns: map[string]*Mapping{
			"POS": New("POS", Outside),
		},
	}
	set.Freeze()

	assert.True(t, set.Tokens.Frozen())
	assert.True(t, set.Casing.Frozen())
	assert.True(t, set.Column("POS").Frozen())
	assert.Nil(t, set.Column("NER"))
}
