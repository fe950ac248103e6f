package main

import (
	"os"

	"github.com/orthoctl/orthoctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
