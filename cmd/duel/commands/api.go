package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/duelist/stockduel/internal/api"
	"github.com/duelist/stockduel/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API for bracket tournaments.

Endpoints:
  GET  /health                         - Health check
  POST /api/brackets                   - Create a bracket
  GET  /api/brackets/{id}              - Get a bracket
  POST /api/brackets/{id}/refresh      - Refresh prices and advance lifecycle
  GET  /api/brackets/{id}/live         - Websocket live score stream
  GET  /api/users/{userId}/brackets    - List a user's brackets
  GET  /api/personalities              - List AI opponent personalities

Example:
  go run ./cmd/duel api
  go run ./cmd/duel api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockDuel API Server ===")

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	bracketHandler := handlers.NewBracketHandler(app.service, app.log)
	personalityHandler := handlers.NewPersonalityHandler(app.registry)
	liveHandler := handlers.NewLiveHandler(app.service, app.log)

	router := api.NewRouter(bracketHandler, personalityHandler, liveHandler, app.log)
	server := api.New(app.cfg, app.log, router)

	go func() {
		if err := server.Start(); err != nil {
			app.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\nServer running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.log.Info("Server stopped")
	return nil
}
