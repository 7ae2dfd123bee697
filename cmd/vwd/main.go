package main

import (
	"os"

	"github.com/rustyeddy/vwd/cmd/vwd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
