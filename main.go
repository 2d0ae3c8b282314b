// Package main is the entry point for the Cull media selection tool.
package main

import (
	"fmt"
	"os"

	"github.com/hbomb79/Cull/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
