package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cmd2 "github.com/axellelanca/shorturls/cmd"
	"github.com/axellelanca/shorturls/internal/app"
)

// RunServerCmd starts the HTTP API, the click workers and the expiry reclaimer.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the URL shortener API server and its background tasks.",
	Long: `This command opens and migrates the database, starts the asynchronous
click workers and the expiry reclaimer, then serves the HTTP API until it
receives SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmd2.Cfg

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(cfg, nil)
		if err != nil {
			log.Fatalf("Failed to initialize application: %v", err)
		}

		a.Start(ctx)

		srv := &http.Server{
			Addr:    a.Addr(),
			Handler: a.Router(),
		}
		log.Println("API routes configured.")

		go func() {
			log.Printf("Starting server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Server failed: %v", err)
				stop()
			}
		}()

		<-ctx.Done()
		log.Println("Shutdown signal received. Stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		// Stops the reclaimer, then drains queued clicks before closing the database
		if err := a.Close(); err != nil {
			log.Printf("Error closing application: %v", err)
		}

		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd2.RootCmd.AddCommand(RunServerCmd)
}
