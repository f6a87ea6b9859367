package main

import (
	"os"

	"github.com/tallied-dev/tallied/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
