package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "opsx-server",
		Usage: "OPS-X realtime collaboration server",
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
			pruneCommand(),
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
