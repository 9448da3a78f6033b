package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
)

// DeleteCmd removes a code whatever its owner.
var DeleteCmd = &cobra.Command{
	Use:   "delete [short-code]",
	Short: "Deletes a short code and its clicks.",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		if err := a.Links.DeleteCode(context.Background(), args[0]); err != nil {
			log.Fatalf("Failed to delete '%s': %v", args[0], err)
		}
		fmt.Printf("Deleted '%s'.\n", args[0])
	},
}

func init() {
	cmd.RootCmd.AddCommand(DeleteCmd)
}
