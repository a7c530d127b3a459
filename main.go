package main

import (
	"os"

	"github.com/rpaixao/a11y-analyzer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
