package main

import (
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd, closeSession := newRootCmd(defaultRootOptions())
	defer closeSession()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
