package main

import (
	"os"

	"github.com/nhle/lenah/cmd/lenah/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
