package main

import (
	"os"

	"github.com/smazurov/procex/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
