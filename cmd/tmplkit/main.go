// Command tmplkit renders files through chained template engines.
//
// Usage:
//
//	tmplkit [--config tmplkit.yaml] [--json] <command> [flags]
//
// Commands:
//
//	render   Render a file
//	engines  List registered engines
//	schema   Print an engine's options schema
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/reglet-dev/tmplkit/internal/cli"
)

// version is set through ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.NewRootCmd(version))
	stop()
	os.Exit(code)
}
