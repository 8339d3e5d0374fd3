// Package tokenizer splits raw text into sentences of word tokens so it can be
// encoded with a prepared artifact.
package tokenizer

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ollama/seqprep/sentence"
)

var (
	// a sentence ends after terminal punctuation followed by a capitalized
	// word or a number, unless the period closes a title, or at a blank line
	boundary = regexp2.MustCompile(
		`(?<=[.!?])(?<!\b(?:Mr|Mrs|Ms|Dr|Prof|St|Jr|Sr|vs)\.)\s+(?=[\p{Lu}\p{N}])|\n[ \t]*\n\s*`,
		regexp2.Unicode,
	)

	word = regexp2.MustCompile(strings.Join([]string{
		`(?i:\p{L}+(?=n['’]t\b))`,
		`(?i:n['’]t\b)`,
		`\p{N}+(?:[.,]\p{N}+)+`,
		`[\p{L}\p{N}]+(?:[-'’][\p{L}\p{N}]+)*`,
		`\.\.\.|…`,
		`[^\s\p{L}\p{N}]`,
	}, "|"), regexp2.Unicode)
)

// Sentences splits text into trimmed, non-empty sentences.
func Sentences(text string) []string {
	runes := []rune(text)

	var sentences []string
	var start int
	add := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
	}

	// match positions are rune offsets
	for m, _ := boundary.FindRunesMatch(runes); m != nil; m, _ = boundary.FindNextMatch(m) {
		add(m.Index)
		start = m.Index + m.Length
	}
	add(len(runes))

	return sentences
}

// Words splits a sentence into tokens. Inner hyphens and apostrophes stay
// within a word; "n't" is split from the word it follows.
func Words(s string) []string {
	var words []string
	for m, _ := word.FindStringMatch(s); m != nil; m, _ = word.FindNextMatch(m) {
		words = append(words, m.String())
	}
	return words
}

// Tokenize splits text into sentences of words.
func Tokenize(text string) []*sentence.Sentence {
	var sentences []*sentence.Sentence
	for _, s := range Sentences(text) {
		if words := Words(s); len(words) > 0 {
			sentences = append(sentences, sentence.New(words...))
		}
	}
	return sentences
}
