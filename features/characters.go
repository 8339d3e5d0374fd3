package features

import (
	"github.com/ollama/seqprep/mapping"
	"github.com/ollama/seqprep/sentence"
)

const (
	CharacterPadding = "PADDING"
	CharacterUnknown = "UNKNOWN"
)

// Alphabet lists the characters with their own id in the character
// vocabulary, in id order after the padding and unknown entries.
const Alphabet = " 0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.,-_()[]{}!?:;#'\"/\\%$`&=*+@^~|"

// CharacterVocabulary returns the fixed, frozen character mapping.
func CharacterVocabulary() *mapping.Mapping {
	m := mapping.New("characters", CharacterPadding, CharacterUnknown)
	for _, r := range Alphabet {
		m.Add(string(r))
	}
	m.Freeze()
	return m
}

// AddCharacters sets the Characters feature of every sentence to the runes of
// each token.
func AddCharacters(sentences []*sentence.Sentence) {
	for _, s := range sentences {
		s.Characters = make([][]rune, len(s.Tokens))
		for i, token := range s.Tokens {
			s.Characters[i] = []rune(token)
		}
	}
}
