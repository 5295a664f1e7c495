package main

import (
	"os"

	"github.com/ayusman/fingerquiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
