// Package features derives per-token features from sentences: the
// normalized lookup key, the casing class and the character decomposition.
package features

import (
	"strings"
	"unicode"
)

// Normalize folds every decimal digit in token to '0' and leaves all other
// runes, including their case, untouched. The result is only used as a
// vocabulary lookup key and must be computed identically at build and encode
// time.
func Normalize(token string) string {
	if strings.IndexFunc(token, unicode.IsDigit) < 0 {
		return token
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return '0'
		}
		return r
	}, token)
}
