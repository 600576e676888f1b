package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Write_ReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	if err := Write(path, []byte("old"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Write(path, []byte("new"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected 'new', got %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func Test_Write_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	if err := Write(path, []byte("x"), 0644); err == nil {
		t.Error("expected error for missing directory")
	}
}
