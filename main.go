package main

import (
	"os"

	"github.com/valcheur/go-steam-monitor/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
