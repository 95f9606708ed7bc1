package main

import (
	"os"

	"github.com/FACorreiaa/afa-daily-reports/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
