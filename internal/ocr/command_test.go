package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestResolveCommand(t *testing.T) {
	existing := map[string]bool{
		"/opt/tesseract/bin/tesseract": true,
		WindowsDefaultPath:             true,
	}
	exists := func(p string) bool { return existing[p] }

	tests := []struct {
		name     string
		override string
		goos     string
		want     string
	}{
		{"override exists", "/opt/tesseract/bin/tesseract", "linux", "/opt/tesseract/bin/tesseract"},
		{"override missing falls back to PATH", "/missing/tesseract", "linux", DefaultCommand},
		{"windows default", "", "windows", WindowsDefaultPath},
		{"override wins on windows", "/opt/tesseract/bin/tesseract", "windows", "/opt/tesseract/bin/tesseract"},
		{"no override on linux", "", "linux", DefaultCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveCommand(tt.override, tt.goos, exists); got != tt.want {
				t.Errorf("resolveCommand(%q, %q) = %q, want %q", tt.override, tt.goos, got, tt.want)
			}
		})
	}
}

func TestResolveCommand_windowsDefaultMissing(t *testing.T) {
	got := resolveCommand("", "windows", func(string) bool { return false })
	if got != DefaultCommand {
		t.Errorf("got %q, want %q", got, DefaultCommand)
	}
}

func TestIsEngineMissing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrEngineNotFound, true},
		{fmt.Errorf("wrapped: %w", ErrEngineNotFound), true},
		{errors.New("TesseractNotFoundError: tesseract is not installed"), true},
		{errors.New("exec: \"tesseract\": executable file not found in $PATH"), true},
		{errors.New("tesseract: exit status 1: Error in pixReadMem"), false},
	}
	for _, tt := range tests {
		if got := IsEngineMissing(tt.err); got != tt.want {
			t.Errorf("IsEngineMissing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCommandEngine_missingBinary(t *testing.T) {
	e := NewCommandEngine(filepath.Join(t.TempDir(), "no-such-tesseract"))
	_, err := e.Recognize(context.Background(), []byte("png"))
	if !errors.Is(err, ErrEngineNotFound) {
		t.Fatalf("err = %v, want ErrEngineNotFound", err)
	}
}

// fakeTesseract writes an executable shell script standing in for tesseract.
func fakeTesseract(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandEngine_recognize(t *testing.T) {
	bin := fakeTesseract(t, `cat > /dev/null
echo "args: $*"
echo "Lecture 3: Thermodynamics"`)
	e := NewCommandEngine(bin, WithLanguage("deu"))
	got, err := e.Recognize(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if !strings.Contains(got, "args: stdin stdout -l deu") {
		t.Errorf("unexpected args in output %q", got)
	}
	if !strings.Contains(got, "Lecture 3: Thermodynamics") {
		t.Errorf("got %q", got)
	}
}

func TestCommandEngine_noLanguage(t *testing.T) {
	bin := fakeTesseract(t, `cat > /dev/null
echo "args: $*"`)
	e := NewCommandEngine(bin, WithLanguage(""))
	got, err := e.Recognize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if strings.TrimSpace(got) != "args: stdin stdout" {
		t.Errorf("got %q", got)
	}
}

func TestCommandEngine_exitError(t *testing.T) {
	bin := fakeTesseract(t, `cat > /dev/null
echo "Error in pixReadMem: Unknown format" >&2
exit 1`)
	e := NewCommandEngine(bin)
	_, err := e.Recognize(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "pixReadMem") {
		t.Errorf("stderr not carried in error: %v", err)
	}
	if IsEngineMissing(err) {
		t.Errorf("exit failure must not look like a missing engine: %v", err)
	}
}

func TestCommandEngine_timeout(t *testing.T) {
	bin := fakeTesseract(t, `cat > /dev/null
exec sleep 5`)
	e := NewCommandEngine(bin)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := e.Recognize(ctx, []byte("x"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Recognize blocked for %v after deadline", elapsed)
	}
}

func TestNewGosseractEngine_stubOrReal(t *testing.T) {
	e, err := NewGosseractEngine("")
	if err != nil {
		if !errors.Is(err, ErrEngineNotFound) {
			t.Errorf("stub error should wrap ErrEngineNotFound: %v", err)
		}
		return
	}
	if e == nil {
		t.Error("nil engine without error")
	}
}
