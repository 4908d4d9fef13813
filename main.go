package main

import (
	"os"

	"github.com/spigell/web3-jobs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
