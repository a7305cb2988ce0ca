package main

import (
	"os"

	"blah/cmd/blah/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
