// Command schemata compiles CUE record models, projects records and runs
// scenario tests against the record stores.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/schemata/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
