// Command tracker runs the simulated crypto market dashboard.
package main

import (
	"fmt"
	"os"

	"crypto-tracker/internal/cli"
	"crypto-tracker/internal/logging"
)

func main() {
	// The configuration is loaded by the root command once --config is
	// known; the default logger only covers flag parsing.
	if err := cli.NewRootCmd(nil, logging.NewLogger()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
