package main

import (
	"os"

	"github.com/appshell-dev/appshell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
