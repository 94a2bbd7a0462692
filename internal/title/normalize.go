// Package title normalizes movie titles for registry matching.
package title

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cinema sites disagree on punctuation and on the optional Cyrillic letters:
// Ё/Й are frequently typed as Е/И, so both spellings must normalize to the
// same form before titles can be compared.
var (
	nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	folds   = strings.NewReplacer("Ё", "Е", "ё", "е", "Й", "И", "й", "и")
)

// Normalize produces the canonical form of a movie title. Combining marks are
// composed first (scraped pages sometimes ship й as и plus a breve), runs of
// non-word characters collapse to a single space, interchangeable letters are
// folded, and the result is trimmed and lowercased. Total over any input.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = nonWord.ReplaceAllString(s, " ")
	s = folds.Replace(s)
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}
