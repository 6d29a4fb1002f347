package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// Format identifies which extractor handles a file.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatPDF
	FormatWord
	FormatImage
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatPDF:
		return "pdf"
	case FormatWord:
		return "word"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}

// MarshalText renders the format by name in JSON output.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a format name produced by MarshalText. Unrecognized names
// decode to FormatUnknown.
func (f *Format) UnmarshalText(b []byte) error {
	*f = FormatUnknown
	for c := FormatText; c <= FormatImage; c++ {
		if c.String() == string(b) {
			*f = c
		}
	}
	return nil
}

var supportedFormats = map[string]Format{
	".txt":  FormatText,
	".pdf":  FormatPDF,
	".docx": FormatWord,
	".doc":  FormatWord,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
}

// SupportedExtensions returns the recognized extensions, sorted, with the leading dot.
// The returned slice is a copy.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether the extension of path is recognized.
// Only the extension is inspected, case-insensitively.
func IsSupported(path string) bool {
	return FormatForPath(path) != FormatUnknown
}

// FormatForPath returns the format for the extension of path.
func FormatForPath(path string) Format {
	return formatForExt(fileExt(path))
}

func formatForExt(ext string) Format {
	if f, ok := supportedFormats[ext]; ok {
		return f
	}
	return FormatUnknown
}

// fileExt returns the lower-cased extension of the base name. Leading dots do not
// start an extension, so ".txt" and "..." have none.
func fileExt(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	return strings.ToLower(filepath.Ext(base))
}
