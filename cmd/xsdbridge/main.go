// Command xsdbridge validates XML documents with a WebAssembly schema engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/reglet-dev/xsd-bridge/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "xsdbridge:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
