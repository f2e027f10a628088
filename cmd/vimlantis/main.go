// Command vimlantis serves a project directory as a 3D ocean.
package main

import (
	"os"

	"github.com/kilupskalvis/vimlantis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
