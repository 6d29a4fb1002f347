// Package cli provides output helpers for the docproc command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lecturebuddies/docproc/internal/extract"
	"github.com/lecturebuddies/docproc/pkg/utils"
)

// OutputFormat is the format for extraction output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// FileResult pairs an input path with its extraction result.
type FileResult struct {
	Path   string
	Result extract.Result
}

type fileResultJSON struct {
	Path       string         `json:"path"`
	Kind       extract.Kind   `json:"kind"`
	Format     extract.Format `json:"format"`
	Text       string         `json:"text"`
	Diagnostic string         `json:"diagnostic,omitempty"`
}

// WriteResults writes results to w in the given format, in order. In text mode a
// positive preview truncates each document's text to that many code points.
func WriteResults(w io.Writer, results []FileResult, format OutputFormat, preview int) error {
	switch format {
	case OutputJSON:
		out := make([]fileResultJSON, 0, len(results))
		for _, r := range results {
			out = append(out, fileResultJSON{
				Path:       r.Path,
				Kind:       r.Result.Kind,
				Format:     r.Result.Format,
				Text:       r.Result.Text,
				Diagnostic: r.Result.Diagnostic(),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		for _, r := range results {
			writeOneResult(w, r, preview)
		}
		return nil
	}
}

func writeOneResult(w io.Writer, r FileResult, preview int) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%s [%s, %s]\n\n", r.Path, r.Result.Format, r.Result.Kind)
	fmt.Fprintf(w, "%s\n\n", utils.Truncate(r.Result.String(), preview))
}

// AnyFailed reports whether any result failed outright.
func AnyFailed(results []FileResult) bool {
	for _, r := range results {
		if r.Result.Failed() {
			return true
		}
	}
	return false
}
