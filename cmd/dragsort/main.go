// Command dragsort compiles, serves and plays drag-and-drop sorting exercises.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dragsort/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
