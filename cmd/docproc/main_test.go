package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lecturebuddies/docproc/internal/config"
	"github.com/lecturebuddies/docproc/internal/extract"
	"github.com/lecturebuddies/docproc/internal/ocr"
	"go.uber.org/zap"
)

func newExtractFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.String("output", "text", "")
	fs.Int("concurrency", 1, "")
	fs.Bool("debug", false, "")
	return fs
}

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after files are moved first",
			args:     []string{"a.pdf", "b.docx", "-output", "json"},
			expected: []string{"-output", "json", "a.pdf", "b.docx"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "a.pdf"},
			expected: []string{"-output", "json", "a.pdf"},
		},
		{
			name:     "flag between files keeps file order",
			args:     []string{"a.pdf", "--output", "json", "b.pdf", "c.txt"},
			expected: []string{"--output", "json", "a.pdf", "b.pdf", "c.txt"},
		},
		{
			name:     "bool flag does not take the next file",
			args:     []string{"a.pdf", "--debug", "b.pdf", "-concurrency=4", "c.txt"},
			expected: []string{"--debug", "-concurrency=4", "a.pdf", "b.pdf", "c.txt"},
		},
		{
			name:     "double dash ends flags",
			args:     []string{"a.pdf", "--", "-odd.txt"},
			expected: []string{"--", "a.pdf", "-odd.txt"},
		},
		{
			name:     "files only returns unchanged",
			args:     []string{"a.pdf"},
			expected: []string{"a.pdf"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(newExtractFlags(), tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestArgsReorder_parsesInInputOrder(t *testing.T) {
	fs := newExtractFlags()
	if err := fs.Parse(argsReorder(fs, []string{"a.pdf", "--output", "json", "b.pdf"})); err != nil {
		t.Fatal(err)
	}
	if got := fs.Lookup("output").Value.String(); got != "json" {
		t.Errorf("output = %q", got)
	}
	if want := []string{"a.pdf", "b.pdf"}; !reflect.DeepEqual(fs.Args(), want) {
		t.Errorf("files = %v, want %v", fs.Args(), want)
	}
}

// slowExtractor records the peak number of concurrent Extract calls.
type slowExtractor struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowExtractor) Extract(_ context.Context, path string) extract.Result {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	s.inFlight.Add(-1)
	return extract.Result{Kind: extract.KindText, Text: filepath.Base(path)}
}

func TestExtractAll_orderAndLimit(t *testing.T) {
	paths := []string{"/d/1.txt", "/d/2.txt", "/d/3.txt", "/d/4.txt", "/d/5.txt", "/d/6.txt"}
	ex := &slowExtractor{}
	results := extractAll(context.Background(), ex, paths, 2)
	if len(results) != len(paths) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] || r.Result.Text != filepath.Base(paths[i]) {
			t.Errorf("result %d = %+v, want path %s", i, r, paths[i])
		}
	}
	if peak := ex.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestExtractAll_realFiles(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("Ohm's law:  V = IR"), 0600); err != nil {
		t.Fatal(err)
	}
	ex := extract.NewExtractor(nil)
	results := extractAll(context.Background(), ex, []string{txt, filepath.Join(dir, "x.rtf")}, 0)
	if results[0].Result.String() != "Ohms law: V IR" {
		t.Errorf("first = %q", results[0].Result.String())
	}
	if results[1].Result.String() != "[Unsupported file format: .rtf]" {
		t.Errorf("second = %q", results[1].Result.String())
	}
}

func TestNewOCREngine(t *testing.T) {
	cmd := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(cmd, []byte("#!/bin/sh\n"), 0700); err != nil {
		t.Fatal(err)
	}
	engine := newOCREngine(config.OCRConfig{Engine: config.EngineCommand, Command: cmd, Language: "eng"}, zap.NewNop())
	ce, ok := engine.(*ocr.CommandEngine)
	if !ok {
		t.Fatalf("engine = %T, want *ocr.CommandEngine", engine)
	}
	if ce.Command() != cmd {
		t.Errorf("command = %q, want %q", ce.Command(), cmd)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_defaultsWhenDefaultMissing(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a config is installed at the default path")
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Server.Port != 8080 || cfg.Summary.MaxLength != 500 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  host: \"127.0.0.1\"\n  port: 9000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}
