//go:build gosseract
// +build gosseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs Tesseract in-process through libtesseract. It requires CGO
// and the tesseract/leptonica development libraries.
type GosseractEngine struct {
	language string
}

// NewGosseractEngine returns an in-process engine for the given language pack.
func NewGosseractEngine(language string) (*GosseractEngine, error) {
	if language == "" {
		language = DefaultLanguage
	}
	return &GosseractEngine{language: language}, nil
}

// Recognize runs OCR on a fresh client. libtesseract cannot be interrupted, so on
// ctx expiry the call returns immediately and the worker finishes in the background.
func (e *GosseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		client := gosseract.NewClient()
		defer client.Close()
		if err := client.SetLanguage(e.language); err != nil {
			done <- outcome{err: fmt.Errorf("set language: %w", err)}
			return
		}
		if err := client.SetImageFromBytes(image); err != nil {
			done <- outcome{err: fmt.Errorf("set image: %w", err)}
			return
		}
		text, err := client.Text()
		done <- outcome{text: text, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("tesseract timed out: %w", ctx.Err())
	case out := <-done:
		return out.text, out.err
	}
}
