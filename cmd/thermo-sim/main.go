//go:build !(rp2040 || rp2350)

// Command thermo-sim runs the firmware against the simulated board.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
