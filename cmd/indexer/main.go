package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dfiindexer/internal/cli"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{Use: "indexer"}
	cli.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
