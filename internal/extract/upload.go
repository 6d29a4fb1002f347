package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExtractUpload writes r to a transient file carrying the extension of name,
// extracts it and removes the file. Unsupported extensions are rejected before
// anything is written. A successful extraction with no text is reported as
// KindEmpty.
func (e *Extractor) ExtractUpload(ctx context.Context, name string, r io.Reader) Result {
	ext := fileExt(name)
	format := formatForExt(ext)
	if format == FormatUnknown {
		res := unsupportedResult(ext)
		res.Ext = ext
		return res
	}

	path, err := e.writeTransient(ext, r)
	if err != nil {
		res := errorResult(labelFileProcessing, err)
		res.Format, res.Ext = format, ext
		return res
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("remove transient upload failed", zap.String("path", path), zap.Error(err))
		}
	}()

	res := e.Extract(ctx, path)
	if res.Kind == KindText && res.Text == "" {
		res.Kind = KindEmpty
		res.Message = msgEmptyUpload
	}
	return res
}

func (e *Extractor) writeTransient(ext string, r io.Reader) (string, error) {
	dir := e.uploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}
