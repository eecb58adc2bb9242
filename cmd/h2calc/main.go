// Command h2calc runs the tank calculators from the command line and prints
// JSON results.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
