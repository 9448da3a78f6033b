package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
)

// SweepCmd runs one expiry sweep and exits.
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Deletes expired, non-permanent links and their clicks once.",
	Run: func(c *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		deleted, err := a.Reclaimer.Sweep(context.Background())
		if err != nil {
			log.Fatalf("Sweep failed after deleting %d link(s): %v", deleted, err)
		}
		fmt.Printf("Deleted %d expired link(s).\n", deleted)
	},
}

func init() {
	cmd.RootCmd.AddCommand(SweepCmd)
}
