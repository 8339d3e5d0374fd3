package features

import (
	"unicode"
	"unicode/utf8"

	"github.com/ollama/seqprep/mapping"
	"github.com/ollama/seqprep/sentence"
)

const (
	CasingPadding       = "PADDING"
	CasingOther         = "other"
	CasingNumeric       = "numeric"
	CasingMainlyNumeric = "mainly_numeric"
	CasingAllLower      = "allLower"
	CasingAllUpper      = "allUpper"
	CasingInitialUpper  = "initialUpper"
	CasingContainsDigit = "contains_digit"
)

// CasingVocabulary returns the fixed, frozen casing mapping. Ids are stable
// across runs.
func CasingVocabulary() *mapping.Mapping {
	m := mapping.New("casing",
		CasingPadding,
		CasingOther,
		CasingNumeric,
		CasingMainlyNumeric,
		CasingAllLower,
		CasingAllUpper,
		CasingInitialUpper,
		CasingContainsDigit,
	)
	m.Freeze()
	return m
}

// Casing classifies token. The checks form a priority chain: the first one
// that matches wins.
func Casing(token string) string {
	if token == "" {
		return CasingOther
	}

	var digits, lower, upper, title int
	for _, r := range token {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsTitle(r):
			title++
		}
	}

	n := utf8.RuneCountInString(token)
	first, _ := utf8.DecodeRuneInString(token)

	switch {
	case digits == n:
		return CasingNumeric
	case float64(digits)/float64(n) > 0.5:
		return CasingMainlyNumeric
	case lower > 0 && upper == 0 && title == 0:
		return CasingAllLower
	case upper > 0 && lower == 0 && title == 0:
		return CasingAllUpper
	case unicode.IsUpper(first):
		return CasingInitialUpper
	case digits > 0:
		return CasingContainsDigit
	default:
		return CasingOther
	}
}

// AddCasing sets the Casing feature of every sentence.
func AddCasing(sentences []*sentence.Sentence) {
	for _, s := range sentences {
		s.Casing = make([]string, len(s.Tokens))
		for i, token := range s.Tokens {
			s.Casing[i] = Casing(token)
		}
	}
}
