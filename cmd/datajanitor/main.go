package main

import (
	"os"

	"datajanitor/internal/cli"
)

// main stays lean: command wiring, config, and logging live in internal/cli.
func main() {
	os.Exit(cli.Execute())
}
