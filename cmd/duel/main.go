package main

import (
	"os"

	"github.com/duelist/stockduel/cmd/duel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
