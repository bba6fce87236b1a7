package enums

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/harmony/enumscan"
	"github.com/broady/harmony/sink"
)

type Cmd struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns to scan (default: current directory)."`
	Dir      string   `help:"Directory the patterns are relative to." short:"C" type:"existingdir"`
	Out      string   `help:"Write to this file instead of stdout." short:"o"`
}

func (c *Cmd) Run(ctx context.Context) error {
	if c.Out == "" {
		return c.run(ctx, sink.NewWriterSink(os.Stdout), "")
	}
	dir, name := filepath.Split(c.Out)
	if dir == "" {
		dir = "."
	}
	return c.run(ctx, sink.NewFilesystemSink(dir), name)
}

func (c *Cmd) run(ctx context.Context, out sink.OutputSink, name string) error {
	reg, err := enumscan.Scan(ctx, c.Dir, c.Patterns...)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	data, err := enumscan.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	slog.Debug("enumerations scanned", slog.Int("count", len(reg)), slog.Any("patterns", c.Patterns))
	if name == "" {
		name = "enums.yaml"
	}
	return out.WriteFile(ctx, name, data)
}
