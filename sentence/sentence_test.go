package sentence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetAndColumn(t *testing.T) {
	s := New("the", "cat")
	s.Set("POS", []string{"DET", "NOUN"})
	s.Append("NER", "O")
	s.Append("NER", "O")

	if got, ok := s.Column(TokensColumn); !ok || !cmp.Equal(got, []string{"the", "cat"}) {
		t.Errorf("tokens: got %v %v", got, ok)
	}

	if got, ok := s.Column("POS"); !ok || !cmp.Equal(got, []string{"DET", "NOUN"}) {
		t.Errorf("POS: got %v %v", got, ok)
	}

	if _, ok := s.Column("chunk"); ok {
		t.Error("expected chunk column to be absent")
	}

	if diff := cmp.Diff([]string{"NER", "POS"}, s.ColumnNames()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendTokens(t *testing.T) {
	var s Sentence
	s.Append(TokensColumn, "a")
	s.Append(TokensColumn, "b")
	if s.Len() != 2 {
		t.Fatalf("expected 2 tokens, got %d", s.Len())
	}
	if s.Columns != nil {
		t.Errorf("tokens must not be stored as a column: %v", s.Columns)
	}
}

func TestClone(t *testing.T) {
	s := New("a")
	s.Set("POS", []string{"X"})
	s.Characters = [][]rune{{'a'}}
	s.Casing = []string{"allLower"}

	c := s.Clone()
	if diff := cmp.Diff(s, c); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	c.Tokens[0] = "b"
	c.Columns["POS"][0] = "Y"
	c.Characters[0][0] = 'b'
	if s.Tokens[0] != "a" || s.Columns["POS"][0] != "X" || s.Characters[0][0] != 'a' {
		t.Error("clone shares memory with the original")
	}
}
