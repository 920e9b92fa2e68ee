package main

import (
	"os"

	"github.com/klabast/wb-services/kalender-grid/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
