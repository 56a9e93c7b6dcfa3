// Command haldemo is the command-line interface to a demonstration of the
// per-processor interrupt dispatch and run-level management core.
package main

import (
	"context"
	"os"

	"github.com/smoynes/runlevel/internal/cli"
	"github.com/smoynes/runlevel/internal/cli/cmd"
)

var (
	commands = []cli.Command{
		cmd.Demo(),
	}
)

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
