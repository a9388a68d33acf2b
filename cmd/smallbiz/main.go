package main

import (
	"os"

	"github.com/smallbiz-dev/smallbiz/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
