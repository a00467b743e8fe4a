package main

import (
	"os"

	"github.com/fuzzlab/ilfuzz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
