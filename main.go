package main

import (
	"os"

	"github.com/removethebg/rtbg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
