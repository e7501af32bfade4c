package main

import (
	"os"

	"github.com/keystrand/usermeta/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitSetupFailed)
	}
}
