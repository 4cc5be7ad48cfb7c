// Package main is riskctl, a command-line front end to the risk analyzer.
package main

import (
	"os"

	"github.com/aristath/riskanalyzer/internal/config"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}
