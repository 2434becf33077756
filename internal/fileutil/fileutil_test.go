package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"mediagate/internal/fileutil"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := []byte("copy me")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("destination content %q, want %q", got, payload)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("move me"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be gone after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sized.bin")
	if err := os.WriteFile(path, make([]byte, 1234), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	size, err := fileutil.FileSize(path)
	if err != nil {
		t.Fatalf("FileSize failed: %v", err)
	}
	if size != 1234 {
		t.Fatalf("size = %d, want 1234", size)
	}
	if _, err := fileutil.FileSize(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestRemoveDirIfEmpty(t *testing.T) {
	base := t.TempDir()
	empty := filepath.Join(base, "empty")
	full := filepath.Join(base, "full")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(full, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := fileutil.RemoveDirIfEmpty(empty); err != nil {
		t.Fatalf("RemoveDirIfEmpty(empty) failed: %v", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Fatal("empty directory should be removed")
	}

	if err := fileutil.RemoveDirIfEmpty(full); err != nil {
		t.Fatalf("RemoveDirIfEmpty(full) failed: %v", err)
	}
	if _, err := os.Stat(full); err != nil {
		t.Fatal("non-empty directory should survive")
	}

	if err := fileutil.RemoveDirIfEmpty(filepath.Join(base, "missing")); err != nil {
		t.Fatalf("missing directory should be fine: %v", err)
	}
}

func TestWithinDir(t *testing.T) {
	cases := []struct {
		name string
		dir  string
		path string
		ok   bool
	}{
		{"inside", "/data/store/7", "/data/store/7/song.mp3", true},
		{"nested", "/data/store/7", "/data/store/7/sub/file", true},
		{"traversal", "/data/store/7", "/data/store/7/../8/x", false},
		{"sibling", "/data/store/7", "/data/store/8/x", false},
		{"same", "/data/store/7", "/data/store/7", false},
		{"escape", "/data/store/7", "/etc/passwd", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := fileutil.WithinDir(tc.dir, tc.path); got != tc.ok {
				t.Fatalf("WithinDir(%q, %q) = %v, want %v", tc.dir, tc.path, got, tc.ok)
			}
		})
	}
}
