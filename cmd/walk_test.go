package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWalkFiles_SkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")
	writeFile(t, dir, "vendor/dep.go", "package dep")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, dir, "build_output/skip.go", "package build_output")

	files, err := walkFiles(dir, []string{"build_output"})
	if err != nil {
		t.Fatalf("walkFiles returned error: %v", err)
	}

	var found []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		found = append(found, rel)
	}

	want := map[string]bool{"main.go": true}
	for _, f := range found {
		if f != "main.go" {
			t.Errorf("unexpected file walked: %s", f)
		}
		delete(want, f)
	}
	if len(want) != 0 {
		t.Errorf("missing expected files: %v", want)
	}
}

func TestResolveInfo_FallsBackToUnknown(t *testing.T) {
	info := resolveInfo("/some/path/file.go")
	if info.Name != "go" {
		t.Errorf("expected go, got %q", info.Name)
	}

	info = resolveInfo("/some/path/file.weirdext")
	if info.Name != "unknown" {
		t.Errorf("expected unknown fallback, got %q", info.Name)
	}
}

func TestLooksBinary(t *testing.T) {
	if looksBinary([]byte("plain text content")) {
		t.Error("plain text should not look binary")
	}
	if !looksBinary([]byte("abc\x00def")) {
		t.Error("content with a NUL byte should look binary")
	}
}

func TestIsTest(t *testing.T) {
	cases := map[string]bool{
		"foo_test.go":    true,
		"test_foo.py":    true,
		"foo.go":         false,
		"testing_utils.go": false,
	}
	for path, want := range cases {
		if got := isTest(path); got != want {
			t.Errorf("isTest(%q) = %v, want %v", path, got, want)
		}
	}
}
