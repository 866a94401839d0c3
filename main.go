package main

import (
	"fmt"
	"os"

	"github.com/voltgrid/gridenv/commands"
)

// main entry point to the action tooling
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
