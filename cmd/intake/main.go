package main

import (
	"os"

	"github.com/DAVIDafergan/tatpro-intake/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
