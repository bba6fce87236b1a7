package check

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/broady/harmony"
	"github.com/broady/harmony/config"
)

type Cmd struct {
	Config string   `arg:"" help:"Configuration file." type:"existingfile"`
	Set    []string `help:"Override a setting, e.g. --set typescript.enum_style=union." placeholder:"KEY=VALUE"`
}

func (c *Cmd) Run() error {
	return c.run(os.Stdout)
}

func (c *Cmd) run(w io.Writer) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(c.Set); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		hErr := harmony.AsError(err)
		for _, field := range slices.Sorted(maps.Keys(hErr.Details)) {
			fmt.Fprintf(w, "✗ %s: %v\n", field, hErr.Details[field])
		}
		return hErr
	}

	fmt.Fprintf(w, "✓ Output: %s/%s\n", cfg.Dir, cfg.TypeScript.WithDefaults().FileName)
	fmt.Fprintf(w, "✓ %d namespaces, %d enumerations\n", len(cfg.Namespaces), len(cfg.Enums))
	for _, name := range slices.Sorted(maps.Keys(cfg.Enums)) {
		if cfg.Enums[name].Flags {
			fmt.Fprintf(w, "! %s is a flags enumeration; members are emitted as plain values\n", name)
		}
	}
	fmt.Fprintln(w, "✓ Configuration valid")
	return nil
}
