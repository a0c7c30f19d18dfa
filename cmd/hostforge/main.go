package main

import (
	"os"

	"github.com/arkadix/hostforge/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
