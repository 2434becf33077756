package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("dir", dir); !result.Passed {
		t.Fatalf("writable dir should pass: %+v", result)
	}
	if result := CheckDirectoryAccess("dir", filepath.Join(dir, "missing")); result.Passed {
		t.Fatalf("missing dir should fail: %+v", result)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("dir", file); result.Passed || !strings.Contains(result.Detail, "not a directory") {
		t.Fatalf("file should fail directory check: %+v", result)
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("cookies", file); !result.Passed {
		t.Fatalf("readable file should pass: %+v", result)
	}
	if result := CheckFileReadable("cookies", filepath.Join(dir, "missing")); result.Passed {
		t.Fatalf("missing file should fail: %+v", result)
	}
	if result := CheckFileReadable("cookies", dir); result.Passed {
		t.Fatalf("directory should fail file check: %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("1 byte floor should pass: %+v", result)
	}
	if result := CheckFreeSpace("space", dir, 1<<62); result.Passed {
		t.Fatalf("absurd floor should fail: %+v", result)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("expected pass")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected failure")
	}
}
