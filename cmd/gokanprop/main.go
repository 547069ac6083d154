// Command gokanprop checks and solves finite-domain constraint models.
package main

import (
	"fmt"
	"os"

	"github.com/gitrdm/gokanprop/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
