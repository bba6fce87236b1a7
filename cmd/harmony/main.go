// Command harmony supports the client generator.
//
// Clients are generated by a program that registers its operations and
// calls harmony.Generator, since resolution works on live Go types. The
// command covers the source-side steps: scanning enumerations into the
// configuration and checking a configuration file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/harmony/cmd/harmony/internal/check"
	"github.com/broady/harmony/cmd/harmony/internal/enums"
)

type CLI struct {
	Verbose bool `help:"Log debug output to stderr." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Enums   enums.Cmd  `cmd:"" help:"Scan Go packages for enumerations and print them as YAML."`
	Check   check.Cmd  `cmd:"" help:"Load and validate a configuration file."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("harmony"),
		kong.Description("Typed TypeScript clients for Go APIs."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := kctx.Run(kong.BindTo(ctx, (*context.Context)(nil)))
	kctx.FatalIfErrorf(err)
}
