package main

import (
	"os"
)

func main() {
	command := NewMDSCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
