//go:build !gosseract
// +build !gosseract

package ocr

import (
	"context"
	"fmt"
)

// GosseractEngine stub type when built without the gosseract tag (see gosseract.go).
type GosseractEngine struct{}

// NewGosseractEngine returns an error when built without the gosseract tag.
func NewGosseractEngine(_ string) (*GosseractEngine, error) {
	return nil, fmt.Errorf("in-process OCR requires building with -tags gosseract: %w", ErrEngineNotFound)
}

// Recognize always reports the engine as missing.
func (e *GosseractEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", ErrEngineNotFound
}
