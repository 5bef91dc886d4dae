package main

import (
	"os"

	"github.com/pybridge-dev/pybridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
