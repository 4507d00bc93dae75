// Command pixctl operates a PIX key registry directly against its store:
// schema migration, key lifecycle, searches, operator tokens and tailing the
// lifecycle event stream.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pixctl:", err)
		os.Exit(1)
	}
}
