package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/pr-admin-client/internal/cli"
)

func main() {
	if err := cli.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
