package fileid

import (
	"path/filepath"
	"testing"
)

func TestWorkbookID(t *testing.T) {
	// Deterministic: same path gives same ID
	id1 := WorkbookID("/data/survey.xlsx")
	id2 := WorkbookID("/data/survey.xlsx")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if id1 == "" {
		t.Error("ID should not be empty")
	}
	if len(id1) < 10 {
		t.Errorf("ID too short: %q", id1)
	}
	if id1[:len(prefix)] != prefix {
		t.Errorf("ID should have prefix %q: got %q", prefix, id1)
	}
}

func TestWorkbookID_differentPaths(t *testing.T) {
	id1 := WorkbookID("/data/survey.xlsx")
	id2 := WorkbookID("/data/interviews.xls")
	if id1 == id2 {
		t.Errorf("different paths should give different IDs: %q", id1)
	}
}

func TestWorkbookID_normalized(t *testing.T) {
	// Clean path: /data/wb and /data/wb/ and /data/./wb should match
	id1 := WorkbookID("/data/wb")
	id2 := WorkbookID("/data/wb/")
	id3 := WorkbookID("/data/./wb")
	if id1 != id2 {
		t.Errorf("paths differing only by trailing slash should match: %q vs %q", id1, id2)
	}
	if id1 != id3 {
		t.Errorf("paths with . should normalize: %q vs %q", id1, id3)
	}
}

func TestWorkbookID_absoluteFromFilepath(t *testing.T) {
	abs, _ := filepath.Abs(".")
	id := WorkbookID(abs)
	if id == "" || id[:len(prefix)] != prefix {
		t.Errorf("absolute path: got %q", id)
	}
}
