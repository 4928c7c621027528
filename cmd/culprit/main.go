package main

import (
	"os"

	"github.com/moolen/culprit/cmd/culprit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
