package extract

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// extractPlain reads a text file as UTF-8, falling back to Latin-1 when the bytes
// are not valid UTF-8. Failing to read the file at all is not a decode problem and
// is reported as a generic processing error.
func extractPlain(path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return errorResult(labelFileProcessing, err)
	}
	text, err := decodeText(content)
	if err != nil {
		return errorResult(labelTXT, err)
	}
	return textResult(Normalize(text))
}

func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}
