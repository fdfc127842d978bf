package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content at path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile reads the file at path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// ReadJSON parses the file at path into a generic map.
func ReadJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(ReadFile(t, path)), &doc); err != nil {
		t.Fatalf("%s is not valid JSON: %v", path, err)
	}
	return doc
}

// Symlink creates a symlink at path pointing to target.
func Symlink(t *testing.T, target, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.Symlink(target, path); err != nil {
		t.Fatalf("failed to symlink %s -> %s: %v", path, target, err)
	}
}

// RequireSymlinkTo asserts that path is a symlink pointing at target.
func RequireSymlinkTo(t *testing.T, path, target string) {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("expected symlink at %s: %v", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("expected %s to be a symlink, mode is %v", path, info.Mode())
	}
	actual, err := os.Readlink(path)
	if err != nil {
		t.Fatalf("failed to read symlink %s: %v", path, err)
	}
	if filepath.Clean(actual) != filepath.Clean(target) {
		t.Fatalf("symlink %s points to %s, expected %s", path, actual, target)
	}
}
