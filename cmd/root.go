package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/internal/config"
)

// Cfg holds the configuration loaded before any subcommand runs.
var Cfg *config.Config

// RootCmd is the base command. Subcommands register themselves from their
// own packages' init functions.
var RootCmd = &cobra.Command{
	Use:   "shorturls",
	Short: "A URL shortener with expiring links",
	Long: `A URL shortener that creates short codes with optional expiry,
records clicks and reclaims expired codes in the background.`,
}

// Execute runs the root command. It is called from main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration into Cfg.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
		Cfg = config.Default()
	}
}
