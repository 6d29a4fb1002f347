// Package summary builds short previews of extracted document text.
package summary

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is used when Summarize is given a non-positive bound.
const DefaultMaxLength = 500

// NoContent is returned for empty input.
const NoContent = "[No content available to summarize]"

// Summarize returns text unchanged when it fits in maxLength code points. Longer
// text is cut to whole '.'-delimited sentences: sentences are appended, trimmed
// and followed by ". ", while the running summary plus the next raw sentence stays
// under maxLength. The result is trimmed. If the first sentence alone does not
// fit, the result is empty.
func Summarize(text string, maxLength int) string {
	if text == "" {
		return NoContent
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	var sb strings.Builder
	n := 0
	for _, sentence := range strings.Split(text, ".") {
		if n+utf8.RuneCountInString(sentence) >= maxLength {
			break
		}
		s := strings.TrimSpace(sentence)
		sb.WriteString(s)
		sb.WriteString(". ")
		n += utf8.RuneCountInString(s) + 2
	}
	return strings.TrimSpace(sb.String())
}
