// Command uftcore is a thin demonstration CLI over the d64, dmk, and
// protection packages: list and extract files from a D64 image, inspect a
// DMK track, and classify a track's copy protection.
package main

import (
	"fmt"
	"os"

	"uftcore/cmd/uftcore/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
