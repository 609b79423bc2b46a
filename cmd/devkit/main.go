// Command devkit runs schematics from YAML collections.
package main

import (
	"fmt"
	"os"

	"github.com/dhrn/devkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "devkit: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
