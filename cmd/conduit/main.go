package main

import (
	"os"

	"conduit/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	logger.Init()
	rootCmd := &cobra.Command{
		Use:   "conduit",
		Short: "Conduit bridges LLM providers and tools behind one call contract",
	}

	rootCmd.AddCommand(chatCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
