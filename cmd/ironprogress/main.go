package main

import (
	"os"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
