package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "savingsctl",
		Short: "Estimate accounting savings from the command line",
	}

	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(assumptionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
