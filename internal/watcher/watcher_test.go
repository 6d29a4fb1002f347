package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	settled []string
	removed []string
}

func (r *recorder) FileSettled(path string) {
	r.mu.Lock()
	r.settled = append(r.settled, path)
	r.mu.Unlock()
}

func (r *recorder) FileRemoved(path string) {
	r.mu.Lock()
	r.removed = append(r.removed, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() (settled, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.settled...), append([]string(nil), r.removed...)
}

func containsSuffix(paths []string, suffix string) bool {
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, true, &recorder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	if err := w.AddDirectory(dir+string(filepath.Separator), false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_DebounceAndFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, true, rec, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	notes := filepath.Join(dir, "notes.txt")
	for i := 0; i < 3; i++ {
		if err := writeFile(notes, strings.Repeat("x", i+1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(dir, "slides.pptx"), "skip"); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		settled, _ := rec.snapshot()
		return containsSuffix(settled, "notes.txt")
	})
	if !ok {
		t.Fatal("notes.txt was never handed over")
	}
	time.Sleep(300 * time.Millisecond)
	settled, _ := rec.snapshot()
	count := 0
	for _, p := range settled {
		if strings.HasSuffix(p, "notes.txt") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("burst of writes handed over %d times, want 1: %v", count, settled)
	}
	if containsSuffix(settled, "slides.pptx") {
		t.Errorf("unsupported file handed over: %v", settled)
	}
}

func TestWatcher_RemoveReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecture.pdf")
	if err := writeFile(path, "%PDF"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := New([]string{dir}, true, rec, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, 2*time.Second, func() bool {
		_, removed := rec.snapshot()
		return containsSuffix(removed, "lecture.pdf")
	})
	if !ok {
		t.Error("removal of lecture.pdf was not reported")
	}
}

func TestWatcher_CustomFilter(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.md"), "# hi"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "b.txt"), "hi"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	onlyMarkdown := func(path string) bool { return filepath.Ext(path) == ".md" }
	w := New([]string{dir}, true, rec, WithFilter(onlyMarkdown))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()

	settled, _ := rec.snapshot()
	if len(settled) != 1 || !strings.HasSuffix(settled[0], "a.md") {
		t.Errorf("settled = %v", settled)
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
		{"/tmp/a", "/tmp/ab/c.txt", false},
	}
	for _, tt := range tests {
		if got := inDir(tt.dir, filepath.Clean(tt.path)); got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}
	if err := mkdirAll(filepath.Join(dir, "sub")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "sub", "scan.PNG"), "png"); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w := New([]string{dir}, true, rec)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()

	settled, _ := rec.snapshot()
	if len(settled) != 2 || !containsSuffix(settled, "a.txt") || !containsSuffix(settled, "scan.PNG") {
		t.Errorf("expected a.txt and sub/scan.PNG, got %v", settled)
	}
}

func TestWatcher_SyncExistingFiles_nonRecursive(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "top.docx"), "x"); err != nil {
		t.Fatal(err)
	}
	if err := mkdirAll(filepath.Join(dir, "sub")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "sub", "nested.docx"), "x"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	w := New([]string{dir}, false, rec)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()

	settled, _ := rec.snapshot()
	if len(settled) != 1 || !strings.HasSuffix(settled[0], "top.docx") {
		t.Errorf("settled = %v", settled)
	}
}

func TestWatcher_Start_createsMissingRootDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")
	w := New([]string{root}, true, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_NewDirectoryIsSynced(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, true, rec, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "week1", "labs")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.txt"), "deep content"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "ignore.xyz"), "skip"); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		settled, _ := rec.snapshot()
		return containsSuffix(settled, "deep.txt")
	})
	if !ok {
		settled, _ := rec.snapshot()
		t.Errorf("expected deep.txt to be handed over, got %v", settled)
	}
	settled, _ := rec.snapshot()
	if containsSuffix(settled, "ignore.xyz") {
		t.Errorf("ignore.xyz should not be handed over")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, true, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	if err := w.AddDirectory(t.TempDir(), true); err != nil {
		t.Errorf("AddDirectory after Stop: %v", err)
	}
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
