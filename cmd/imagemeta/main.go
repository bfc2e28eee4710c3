package main

import (
	"fmt"
	"os"

	"imagemeta/internal/cli"
	"imagemeta/pkg/logger"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cli.NewRootCommand(log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
