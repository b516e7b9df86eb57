// Command gtuberctl is a small CLI wrapping gtuber's extraction client: fetch
// media info for a URL and optionally dump a DASH/HLS manifest for it.
package main

import (
	"fmt"
	"os"

	"github.com/rafostar/gtuber-go/cmd/gtuberctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
