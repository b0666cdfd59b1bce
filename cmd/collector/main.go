// Package main contains the entrypoint for the collector.
package main

import (
	"fmt"
	"os"

	"github.com/edgard/tgcollector/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
