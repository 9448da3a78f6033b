package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
	"github.com/axellelanca/shorturls/internal/database"
)

// MigrateCmd represents the 'migrate' command.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (a SQLite file or a
libsql server) and runs GORM automatic migrations for the 'links' and
'clicks' tables.`,
	Run: func(c *cobra.Command, args []string) {
		db, err := database.Open(cmd.Cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
