package main

import (
	"fmt"
	"os"

	"github.com/comitanigiacomo/kanso-streak-engine/cmd/habitctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
