// Package testutil provides helpers shared by the generator's tests.
package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Logger returns a debug-level logger writing into the returned buffer.
// The captured output is logged if the test fails.
func Logger(t testing.TB) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	t.Cleanup(func() {
		if t.Failed() && buf.Len() > 0 {
			t.Logf("log output:\n%s", buf.String())
		}
	})
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// ContainsAll reports every want that is not a substring of got.
func ContainsAll(t testing.TB, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

// Module writes a standalone Go module into a temporary directory and
// returns the directory. Paths in files may contain subdirectories.
func Module(t testing.TB, module string, files map[string]string) string {
	t.Helper()
	// Disable go.work so temp directories work as standalone modules
	t.Setenv("GOWORK", "off")
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("go.mod", "module "+module+"\n\ngo 1.21\n")
	for name, content := range files {
		write(name, content)
	}
	return dir
}
