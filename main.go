// Command meaningfield renders meaning vectors as a procedural field.
package main

import (
	"os"

	"meaningfield/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
