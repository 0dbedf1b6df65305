package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "StockDuel - bracket tournaments against AI stock pickers",
	Long: `StockDuel bracket engine CLI

Users pit their stock picks against an AI opponent personality in a
single-elimination bracket scored on direction-adjusted price changes.

Usage:
  go run ./cmd/duel [command]

Examples:
  go run ./cmd/duel api
  go run ./cmd/duel scheduler
  go run ./cmd/duel test-db
  go run ./cmd/duel test-logger`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
