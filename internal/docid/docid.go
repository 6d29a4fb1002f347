// Package docid assigns session document IDs.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	filePrefix   = "file:"
	uploadPrefix = "upload:"
)

// ForPath returns a stable ID for a watched file. The same cleaned path always
// yields the same ID, so a rewritten file replaces its earlier entry.
func ForPath(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return filePrefix + hex.EncodeToString(hash[:])
}

// ForUpload returns a fresh random ID for an uploaded document.
func ForUpload() string {
	return uploadPrefix + uuid.NewString()
}

// IsUpload reports whether id was produced by ForUpload.
func IsUpload(id string) bool {
	return strings.HasPrefix(id, uploadPrefix)
}
