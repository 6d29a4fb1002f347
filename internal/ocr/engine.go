// Package ocr wraps the Tesseract OCR engine behind a small interface so the
// extractor can be given a real engine, an in-process one, or a fake in tests.
package ocr

import (
	"context"
	"errors"
	"strings"
)

// ErrEngineNotFound is returned when the Tesseract binary or library cannot be located.
var ErrEngineNotFound = errors.New("tesseract is not installed or it's not in your PATH")

// DefaultLanguage is the Tesseract language pack used when none is configured.
const DefaultLanguage = "eng"

// Engine recognizes text in an encoded image. Implementations must honor ctx
// cancellation so a caller-imposed deadline bounds the call.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// IsEngineMissing reports whether err means the OCR engine itself is unavailable,
// as opposed to the engine failing on a particular image.
func IsEngineMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEngineNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tesseract is not installed") || strings.Contains(msg, "not found")
}
