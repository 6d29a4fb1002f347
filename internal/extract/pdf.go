package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(path string) (res Result) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(labelPDF, fmt.Errorf("%v", r))
		}
	}()
	text, err := readPDFText(path)
	if err != nil {
		return errorResult(labelPDF, err)
	}
	if text == "" {
		return emptyResult(msgEmptyPDF)
	}
	return textResult(Normalize(text))
}

// readPDFText concatenates the text of every page, one page per line. Pages with no
// text layer contribute nothing. A zero-byte file has no pages and yields "".
func readPDFText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat PDF: %w", err)
	}
	if info.Size() == 0 {
		return "", nil
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
