// Package prompt renders extracted documents into the text blocks that chat and
// quiz requests embed.
package prompt

import (
	"regexp"
	"strings"

	"github.com/lecturebuddies/docproc/internal/extract"
)

// DefaultSnippetLength is the number of code points of a document quoted into a prompt.
const DefaultSnippetLength = 1000

const (
	contextHeader   = "\n\n**Available Documents:**\n"
	noExtractable   = "[No extractable text]"
	noTextFromFile  = "[No text extracted from this file]"
	extractedPrefix = "(Extracted content: "
)

// Document is a named piece of extracted content. Text is what the extraction
// produced for display, which may be a bracketed diagnostic.
type Document struct {
	Name string
	Text string
}

// Snippet returns the first n code points of text. n <= 0 means DefaultSnippetLength.
func Snippet(text string, n int) string {
	if n <= 0 {
		n = DefaultSnippetLength
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// DocumentContext lists docs, in order, for a chat system prompt. It returns ""
// when there are no documents.
func DocumentContext(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(contextHeader)
	for _, d := range docs {
		snippet := noExtractable
		if d.Text != "" {
			snippet = Snippet(d.Text, DefaultSnippetLength)
		}
		sb.WriteString("\n--- ")
		sb.WriteString(d.Name)
		sb.WriteString(" ---\n")
		sb.WriteString(snippet)
		sb.WriteString("...\n")
	}
	return sb.String()
}

// InjectFileContent replaces every mention of a document name in message, matched
// case-insensitively, with a quoted snippet of its content. Documents are applied
// in order.
func InjectFileContent(message string, docs []Document) string {
	for _, d := range docs {
		if d.Name == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(d.Name))
		if !re.MatchString(message) {
			continue
		}
		content := d.Text
		if strings.TrimSpace(content) == "" {
			content = noTextFromFile
		}
		message = re.ReplaceAllLiteralString(message, extractedPrefix+Snippet(content, DefaultSnippetLength)+"...)")
	}
	return message
}

// QuizContent returns the text a quiz can be generated from. ok is false when the
// result carries no usable text (a diagnostic or an empty extraction).
func QuizContent(res extract.Result) (text string, ok bool) {
	if !res.HasText() {
		return "", false
	}
	return res.Text, true
}
