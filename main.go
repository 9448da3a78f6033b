package main

import (
	"github.com/axellelanca/shorturls/cmd"
	_ "github.com/axellelanca/shorturls/cmd/cli"    // registers create, stats, history, delete, sweep, migrate
	_ "github.com/axellelanca/shorturls/cmd/server" // registers run-server
)

func main() {
	cmd.Execute()
}
