// Package extract turns study material (plain text, PDF, Word, scanned images)
// into normalized text. Extraction never fails with an error: every outcome,
// including unsupported formats and broken files, is reported as a Result.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/lecturebuddies/docproc/internal/ocr"
	"go.uber.org/zap"
)

// DefaultOCRTimeout bounds a single OCR call.
const DefaultOCRTimeout = 30 * time.Second

// Extractor routes files to the extractor for their format.
type Extractor struct {
	ocr        ocr.Engine
	ocrTimeout time.Duration
	uploadDir  string
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a logger for debug output (per-file format, outcome and timing).
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOCRTimeout overrides DefaultOCRTimeout. Non-positive values are ignored.
func WithOCRTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.ocrTimeout = d
		}
	}
}

// WithUploadDir sets where ExtractUpload writes transient files. Defaults to os.TempDir().
func WithUploadDir(dir string) Option {
	return func(e *Extractor) { e.uploadDir = dir }
}

// NewExtractor returns an Extractor that uses engine for images.
// engine may be nil; images then report OCR as unavailable.
func NewExtractor(engine ocr.Engine, opts ...Option) *Extractor {
	e := &Extractor{
		ocr:        engine,
		ocrTimeout: DefaultOCRTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its normalized text or a diagnostic.
// The format is chosen by the lower-cased extension. Extract never panics; a panic
// inside an extractor becomes a KindError result. Only the OCR step is bounded
// in time, by ctx and the configured OCR timeout.
func (e *Extractor) Extract(ctx context.Context, path string) (res Result) {
	start := time.Now()
	ext := fileExt(path)
	format := formatForExt(ext)
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(labelFileProcessing, fmt.Errorf("%v", r))
		}
		res.Format = format
		res.Ext = ext
		e.logger.Debug("document extracted",
			zap.String("path", path),
			zap.Stringer("format", format),
			zap.Stringer("kind", res.Kind),
			zap.Int("text_len", len(res.Text)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	switch format {
	case FormatText:
		return extractPlain(path)
	case FormatPDF:
		return extractPDF(path)
	case FormatWord:
		return extractWord(path)
	case FormatImage:
		return e.extractImage(ctx, path)
	default:
		return unsupportedResult(ext)
	}
}
