// Command wtmobile keeps a local list of gyms.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/wtmobile/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
