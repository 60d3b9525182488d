package main

import (
	"os"

	"github.com/rustyeddy/barbt/cmd/barbt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
