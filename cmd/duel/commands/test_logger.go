package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duelist/stockduel/pkg/config"
	"github.com/duelist/stockduel/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Exercise the structured logger",
	Long: `Prints sample log lines in both output formats so the logging
configuration can be verified by eye.

Example:
  go run ./cmd/duel test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockDuel Logger Test ===")

	fmt.Println("\n1. JSON format (production)")
	fmt.Println("--------------------------------")
	logSamples(loggerFor("production", "json"))

	fmt.Println("\n2. Console format (development)")
	fmt.Println("--------------------------------")
	logSamples(loggerFor("development", "console"))

	fmt.Println("\nAll logger tests completed")
	return nil
}

func loggerFor(env, format string) *logger.Logger {
	cfg := &config.Config{
		Env:       env,
		LogLevel:  "debug",
		LogFormat: format,
	}
	return logger.New(cfg)
}

func logSamples(log *logger.Logger) {
	log.Debug("Debug message")
	log.Info("Info message")
	log.Warn("Warn message")

	log.WithFields(map[string]interface{}{
		"bracket_id": "b-123",
		"size":       9,
		"timeframe":  "weekly",
	}).Info("Bracket created")

	log.WithError(errors.New("provider timeout")).
		WithField("symbol", "AAPL").
		Warn("Quote fetch failed")
}
