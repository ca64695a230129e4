// Command parallax validates, simulates and runs YAML page descriptions.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
