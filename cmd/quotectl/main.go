// Package main is the entry point for the quotectl CLI.
package main

import (
	"os"

	"github.com/YaswanthVanama123/enviromaster-sub004/cmd/quotectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
