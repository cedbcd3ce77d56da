// Command ecv validates class schemas and inspects values described by them.
package main

import (
	"os"

	"github.com/roach88/ecvalue/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
