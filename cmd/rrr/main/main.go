package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/rrr/cmd/rrr"
)

func main() {
	rootCmd := rrr.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
