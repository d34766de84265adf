// Command pilotcp moves files between any vfs-supported location and a PILOT project, and
// registers datasets described in YAML.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
