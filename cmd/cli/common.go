package cli

import (
	"log"

	"github.com/axellelanca/shorturls/cmd"
	"github.com/axellelanca/shorturls/internal/app"
)

// openApp builds the application for a one-shot command. Clicks are never
// produced here, so no background task is started.
func openApp() *app.App {
	a, err := app.New(cmd.Cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	return a
}
