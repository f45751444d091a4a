package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteText writes content to dir/rel, creating parent directories, and
// returns the full path.
func WriteText(t testing.TB, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
