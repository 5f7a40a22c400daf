package main

import (
	"os"

	"github.com/GriffinCanCode/sitecraft/cmd/blueprintctl/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Errors are printed by the printer with color formatting
	if err := commands.Execute(version, commit); err != nil {
		os.Exit(1)
	}
}
