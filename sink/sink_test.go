package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"client.ts", false},
		{"gen/api/client.ts", false},
		{"", true},
		{"/etc/passwd", true},
		{"C:/client.ts", true},
		{"../client.ts", true},
		{"gen/../../client.ts", true},
		{"./client.ts", true},
		{"gen//client.ts", true},
		{"gen/", true},
		{"my..file.ts", false},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestFilesystemSink_WriteFile(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "gen/client.ts", []byte("one")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := s.WriteFile(ctx, "gen/client.ts", []byte("two")); err != nil {
		t.Fatalf("WriteFile() overwrite error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "gen", "client.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}

	entries, _ := os.ReadDir(filepath.Join(root, "gen"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".harmony-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	s.Overwrite = false
	ctx := context.Background()

	if err := s.WriteFile(ctx, "client.ts", []byte("one")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	err := s.WriteFile(ctx, "client.ts", []byte("two"))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second WriteFile() error = %v, want already exists", err)
	}
}

func TestFilesystemSink_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	if err := NewFilesystemSink(root).WriteFile(ctx, "client.ts", []byte("x")); err == nil {
		t.Error("WriteFile() with canceled context succeeded")
	}
	if _, err := os.Stat(filepath.Join(root, "client.ts")); !os.IsNotExist(err) {
		t.Error("file written despite cancellation")
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	content := []byte("hello")
	if err := s.WriteFile(ctx, "b.ts", content); err != nil {
		t.Fatal(err)
	}
	content[0] = 'j'
	if got := string(s.Get("b.ts")); got != "hello" {
		t.Errorf("Get() = %q, want %q", got, "hello")
	}

	var wg sync.WaitGroup
	for _, p := range []string{"c.ts", "a.ts"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WriteFile(ctx, p, []byte(p))
		}()
	}
	wg.Wait()

	paths := s.Paths()
	if strings.Join(paths, ",") != "a.ts,b.ts,c.ts" {
		t.Errorf("Paths() = %v, want [a.ts b.ts c.ts]", paths)
	}
	if s.Get("missing.ts") != nil {
		t.Error("Get(missing) != nil")
	}

	s.Reset()
	if len(s.Paths()) != 0 {
		t.Error("Reset() left files behind")
	}
	if err := s.WriteFile(ctx, "../x.ts", nil); err == nil {
		t.Error("WriteFile() accepted a traversing path")
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)
	if err := s.WriteFile(context.Background(), "client.ts", []byte("export {};\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "export {};\n" {
		t.Errorf("written = %q", buf.String())
	}
}
