package main

import (
	"os"

	"github.com/chainsift/pollwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
