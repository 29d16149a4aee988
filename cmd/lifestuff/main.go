package main

import (
	"os"

	"lifestuff/cmd/lifestuff/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
