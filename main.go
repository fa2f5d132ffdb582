package main

import (
	"os"

	"github.com/21state/spacetoken/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
