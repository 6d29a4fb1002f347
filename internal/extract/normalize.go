package extract

import (
	"strings"
	"unicode"
)

// keptPunctuation is the punctuation that survives normalization.
const keptPunctuation = ".,!?;:-()[]{}"

// Normalize collapses whitespace runs to a single space, drops every rune that is
// not a letter, number, underscore, whitespace or kept punctuation, collapses again
// (dropping can leave adjacent spaces) and trims. Empty input yields "".
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = collapseSpace(text)
	text = strings.Map(func(r rune) rune {
		if keepRune(r) {
			return r
		}
		return -1
	}, text)
	return collapseSpace(text)
}

func keepRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' ||
		isSpace(r) || strings.ContainsRune(keptPunctuation, r)
}

// isSpace extends unicode.IsSpace with the ASCII file, group, record and unit
// separators (U+001C..U+001F).
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// collapseSpace joins whitespace-separated fields with one space; the result is trimmed.
func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}
