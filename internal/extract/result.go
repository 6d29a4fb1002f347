package extract

import "fmt"

// Kind discriminates the outcome of an extraction.
type Kind int

const (
	// KindText is a successful extraction; Result.Text holds normalized text.
	KindText Kind = iota
	// KindEmpty means the format parsed fine but yielded no text (scanned PDF, blank image).
	KindEmpty
	// KindUnsupported means the extension is not recognized.
	KindUnsupported
	// KindError means reading, decoding, parsing or the OCR engine failed.
	KindError
	// KindOCRUnavailable means the OCR engine binary could not be found.
	KindOCRUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEmpty:
		return "empty"
	case KindUnsupported:
		return "unsupported"
	case KindError:
		return "error"
	case KindOCRUnavailable:
		return "ocr_unavailable"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindText; c <= KindOCRUnavailable; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", b)
}

// Diagnostic labels. Downstream consumers match on this wording, so keep it verbatim.
const (
	labelFileProcessing = "File processing error"
	labelTXT            = "Error reading TXT file"
	labelPDF            = "Error reading PDF"
	labelWord           = "Error reading Word document"
	labelImage          = "Error reading image"

	msgUnsupported    = "Unsupported file format: "
	msgEmptyPDF       = "No text extracted from PDF"
	msgEmptyWord      = "No text extracted from Word file"
	msgEmptyImage     = "No text detected in image"
	msgEmptyUpload    = "No text extracted"
	msgOCRUnavailable = "OCR unavailable: Tesseract not found. Install Tesseract or set TESSERACT_CMD"
)

// Result is the outcome of extracting one file. Exactly one of Text (KindText) or
// Message (every other kind) is meaningful.
type Result struct {
	Kind    Kind
	Format  Format
	Ext     string
	Text    string
	Message string
}

// String renders the result the way plain-string consumers expect: the text itself,
// or the diagnostic message in square brackets.
func (r Result) String() string {
	if r.Kind == KindText {
		return r.Text
	}
	return "[" + r.Message + "]"
}

// Diagnostic returns the bracketed diagnostic, or "" for a successful extraction.
func (r Result) Diagnostic() string {
	if r.Kind == KindText {
		return ""
	}
	return r.String()
}

// Failed reports whether extraction failed outright. KindEmpty is informational and
// does not count as a failure.
func (r Result) Failed() bool {
	switch r.Kind {
	case KindError, KindUnsupported, KindOCRUnavailable:
		return true
	}
	return false
}

// HasText reports whether the result carries usable, non-empty text.
func (r Result) HasText() bool {
	return r.Kind == KindText && r.Text != ""
}

func textResult(text string) Result {
	return Result{Kind: KindText, Text: text}
}

func emptyResult(msg string) Result {
	return Result{Kind: KindEmpty, Message: msg}
}

func errorResult(label string, err error) Result {
	return Result{Kind: KindError, Message: label + ": " + err.Error()}
}

func unsupportedResult(ext string) Result {
	return Result{Kind: KindUnsupported, Message: msgUnsupported + ext}
}

func ocrUnavailableResult() Result {
	return Result{Kind: KindOCRUnavailable, Message: msgOCRUnavailable}
}
