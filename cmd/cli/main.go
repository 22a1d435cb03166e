package main

import (
	"os"

	"churn-engine/cmd/cli/cmd"
	"churn-engine/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
