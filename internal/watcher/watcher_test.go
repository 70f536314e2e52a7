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

type intakeLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *intakeLog) add(path string) {
	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.mu.Unlock()
}

func (l *intakeLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	var log intakeLog

	w := NewWatcher(nil, nil, true, log.add)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || filepath.Clean(dirs[0]) != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_DebouncedIntake(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	var log intakeLog
	w := NewWatcher([]string{dir}, nil, true, log.add, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(sub, "survey.xlsx")
	if err := os.WriteFile(fPath, []byte("payload"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if got := log.snapshot(); len(got) < 1 {
		t.Errorf("expected at least one intake callback, got %d", len(got))
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/in/a.xlsx", nil, true},
		{"/in/a.XLSX", nil, true},
		{"/in/a.xls", nil, true},
		{"/in/a.txt", nil, false},
		{"/in/~$a.xlsx", nil, false},
		{"/in/a.xlsx", []string{".xls"}, false},
		{"/in/a.xls", []string{"xls"}, true},
	}
	for _, tt := range tests {
		got := eligible(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("eligible(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.xlsx", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_SyncExisting_replaysWorkbooks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.xlsx"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "~$a.xlsx"), []byte("lock"), 0600); err != nil {
		t.Fatal(err)
	}

	var log intakeLog
	w := NewWatcher([]string{dir}, nil, true, log.add)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExisting()

	got := log.snapshot()
	if len(got) != 1 || !strings.HasSuffix(got[0], "a.xlsx") {
		t.Errorf("expected one replayed workbook a.xlsx, got %v", got)
	}
}

func TestWatcher_Start_createsMissingRootDirectory(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "watch", "me")

	w := NewWatcher([]string{root}, nil, true, nil)
	// Background context and no Stop: run() may still be selecting on
	// the fsnotify channels when the test exits.
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_HandleNewDirectory_replaysDroppedFolder(t *testing.T) {
	dir := t.TempDir()

	var log intakeLog
	w := NewWatcher([]string{dir}, nil, true, log.add, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Simulate copying a folder of workbooks into the watched directory.
	newFolder := filepath.Join(dir, "2024-survey")
	if err := os.MkdirAll(newFolder, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(newFolder, "wave1.xlsx"), []byte("a"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(newFolder, "wave2.xls"), []byte("b"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(newFolder, "readme.md"), []byte("c"), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)

	got := log.snapshot()
	var xlsx, xls bool
	for _, p := range got {
		if strings.HasSuffix(p, "wave1.xlsx") {
			xlsx = true
		}
		if strings.HasSuffix(p, "wave2.xls") {
			xls = true
		}
		if strings.HasSuffix(p, "readme.md") {
			t.Errorf("readme.md should not reach intake")
		}
	}
	if !xlsx || !xls {
		t.Errorf("expected wave1.xlsx and wave2.xls, got %v", got)
	}
}

func TestWatcher_HandleNewDirectory_recursiveSubfolders(t *testing.T) {
	dir := t.TempDir()

	var log intakeLog
	w := NewWatcher([]string{dir}, nil, true, log.add, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "level1", "level2")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "deep.xlsx"), []byte("deep"), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)

	found := false
	for _, p := range log.snapshot() {
		if strings.HasSuffix(p, "deep.xlsx") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected deep.xlsx to reach intake, got %v", log.snapshot())
	}
}

func TestWatcher_RemoveCancelsPendingIntake(t *testing.T) {
	dir := t.TempDir()

	var log intakeLog
	w := NewWatcher([]string{dir}, nil, false, log.add, WithDebounce(200*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(dir, "gone.xlsx")
	if err := os.WriteFile(fPath, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	// Delete before the debounce fires.
	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	for _, p := range log.snapshot() {
		if strings.HasSuffix(p, "gone.xlsx") {
			t.Errorf("deleted workbook should not reach intake: %v", log.snapshot())
		}
	}
}
