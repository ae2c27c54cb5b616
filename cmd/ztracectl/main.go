// Command ztracectl exercises the ztrace public API: demo runs a sample
// trace end to end against a logging reporter, decode pretty-prints a JSON
// wire batch read from stdin.
package main

import (
	"fmt"
	"os"

	"github.com/relaytrace/ztrace/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
