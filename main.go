package main

import (
	"os"

	"github.com/Jainil7227/AlphaNeuron/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
